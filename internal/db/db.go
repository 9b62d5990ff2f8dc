package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blogapi/internal/model"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	Debug        bool
	// Logger receives SQL errors and slow queries, and every statement when Debug is set.
	Logger *zap.Logger
}

// NowFunc is the ORM clock. Timestamps are kept in UTC at millisecond
// precision so an epoch-millis cursor addresses a row exactly.
func NowFunc() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Config returns the gorm configuration shared by every dialect. gorm output
// goes to log under the "gorm" name; a nil log discards it.
func Config(log *zap.Logger, debug bool) *gorm.Config {
	if log == nil {
		log = zap.NewNop()
	}
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		NowFunc: NowFunc,
		Logger: logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Open returns a connected GORM DB instance for driver "postgres" or "mysql".
func Open(driver, dsn string, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, Config(opts.Logger, opts.Debug))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Models lists every table in dependency order.
func Models() []any {
	return []any{&model.User{}, &model.Category{}, &model.Post{}}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Reset drops every table and migrates again.
func Reset(db *gorm.DB) error {
	models := Models()
	// drop children first
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return Migrate(db)
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
