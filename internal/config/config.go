package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from the environment and an optional .env file.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	AMQP     AMQPConfig
}

type AppConfig struct {
	Name           string
	Env            string
	Version        string
	Debug          bool
	ForceShowError bool
	LogPath        string
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	Reset        bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type HTTPConfig struct {
	Port            string
	FrontendURL     string
	CookieSecure    bool
	SigninRateLimit float64
	SwaggerHost     string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

// ShowErrors reports whether internal error messages may be sent to clients.
func (c *Config) ShowErrors() bool {
	return c.App.Debug || c.App.ForceShowError
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:           v.GetString("APP_NAME"),
			Env:            v.GetString("APP_ENV"),
			Version:        v.GetString("APP_VERSION"),
			Debug:          v.GetBool("DEBUG"),
			ForceShowError: v.GetBool("FORCE_SHOW_ERROR"),
			LogPath:        v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:          v.GetString("DATABASE_URL"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			Reset:        v.GetBool("RESET_DB"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
			RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
			AccessTTL:     v.GetDuration("ACCESS_TOKEN_TTL"),
			RefreshTTL:    v.GetDuration("REFRESH_TOKEN_TTL"),
		},
		HTTP: HTTPConfig{
			Port:            v.GetString("SERVER_PORT"),
			FrontendURL:     v.GetString("FRONTEND_URL"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
			SigninRateLimit: v.GetFloat64("SIGNIN_RATE_LIMIT"),
			SwaggerHost:     v.GetString("SWAGGER_HOST"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "blogapi")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("DEBUG", false)
	v.SetDefault("FORCE_SHOW_ERROR", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=blog port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("RESET_DB", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_SECRET", "")
	v.SetDefault("JWT_REFRESH_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("FRONTEND_URL", "http://127.0.0.1:5173")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("SIGNIN_RATE_LIMIT", 5)
	v.SetDefault("SWAGGER_HOST", "")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "blog.events")
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		if c.App.Env != "development" {
			return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
		}
		// development fallback so a fresh checkout boots
		if c.JWT.AccessSecret == "" {
			c.JWT.AccessSecret = "dev-access-secret"
		}
		if c.JWT.RefreshSecret == "" {
			c.JWT.RefreshSecret = "dev-refresh-secret"
		}
	}
	return nil
}
