package db

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"blogapi/internal/model"
)

func TestNowFunc_MillisecondUTC(t *testing.T) {
	now := NowFunc()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%int(time.Millisecond))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn", Options{})
	assert.Error(t, err)
}

func TestMigrateAndReset(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), Config(nil, false))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(gdb))
	for _, m := range Models() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}

	require.NoError(t, gdb.Create(&model.User{FirstName: "A", Email: "a@x.io", Password: "x"}).Error)
	require.NoError(t, Reset(gdb))

	var count int64
	require.NoError(t, gdb.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConfig_LogsThroughZap(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
		query string
		want  string
	}{
		{"debug logs statements", true, "SELECT 42", "SELECT 42"},
		{"errors are logged without debug", false, "SELECT * FROM missing_table", "missing_table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			gdb, err := gorm.Open(sqlite.Open("file::memory:"), Config(zap.New(core), tt.debug))
			require.NoError(t, err)

			_ = gdb.Exec(tt.query).Error

			entries := logs.FilterLoggerName("gorm").FilterMessageSnippet(tt.want).All()
			assert.NotEmpty(t, entries)
		})
	}
}

func TestConfig_QuietByDefault(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), Config(zap.New(core), false))
	require.NoError(t, err)

	require.NoError(t, gdb.Exec("SELECT 1").Error)
	assert.Zero(t, logs.FilterLoggerName("gorm").Len())
}
