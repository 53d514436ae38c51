package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Auth         AuthConfig         `toml:"auth"`
	Redis        RedisConfig        `toml:"redis"`
	Booking      BookingConfig      `toml:"booking"`
	Materializer MaterializerConfig `toml:"materializer"`
	Scheduler    SchedulerConfig    `toml:"scheduler"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Issuer    string `toml:"issuer"`
}

type RedisConfig struct {
	Enabled         bool   `toml:"enabled"`
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	RateLimit       int    `toml:"rate_limit"`        // запросов на hold/book за окно
	RateLimitWindow int    `toml:"rate_limit_window"` // секунды
}

type BookingConfig struct {
	HoldTTLMinutes    int `toml:"hold_ttl_minutes"`
	DefaultPriceCents int `toml:"default_price_cents"`
	LessonMinutes     int `toml:"lesson_minutes"`
}

// HoldTTL время жизни hold
func (b BookingConfig) HoldTTL() time.Duration {
	return time.Duration(b.HoldTTLMinutes) * time.Minute
}

type MaterializerConfig struct {
	HorizonWeeks    int `toml:"horizon_weeks"`
	IntervalMinutes int `toml:"interval_minutes"`
}

type SchedulerConfig struct {
	Enabled                         bool `toml:"enabled"`
	PurgeHoldsIntervalMinutes       int  `toml:"purge_holds_interval_minutes"`
	CompleteBookingsIntervalMinutes int  `toml:"complete_bookings_interval_minutes"`
}

// Load читает TOML файл, затем .env и переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	// .env не обязателен
	_ = godotenv.Load(".env")

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default значения по умолчанию, поверх которых читается файл
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "lesson-service",
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			RateLimit:       20,
			RateLimitWindow: 60,
		},
		Booking: BookingConfig{
			HoldTTLMinutes:    15,
			DefaultPriceCents: 0,
			LessonMinutes:     60,
		},
		Materializer: MaterializerConfig{
			HorizonWeeks:    4,
			IntervalMinutes: 1440,
		},
		Scheduler: SchedulerConfig{
			Enabled:                         true,
			PurgeHoldsIntervalMinutes:       5,
			CompleteBookingsIntervalMinutes: 15,
		},
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HTTP_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.HTTPPort = port
	}
	return nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrInvalidConfig)
	}
	if c.Booking.HoldTTLMinutes <= 0 {
		return fmt.Errorf("%w: booking.hold_ttl_minutes must be positive", ErrInvalidConfig)
	}
	if c.Booking.DefaultPriceCents < 0 {
		return fmt.Errorf("%w: booking.default_price_cents must not be negative", ErrInvalidConfig)
	}
	if c.Booking.LessonMinutes <= 0 {
		return fmt.Errorf("%w: booking.lesson_minutes must be positive", ErrInvalidConfig)
	}
	if c.Materializer.HorizonWeeks <= 0 || c.Materializer.HorizonWeeks > 52 {
		return fmt.Errorf("%w: materializer.horizon_weeks must be in 1..52", ErrInvalidConfig)
	}
	if c.Materializer.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: materializer.interval_minutes must be positive", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	if c.Scheduler.Enabled && (c.Scheduler.PurgeHoldsIntervalMinutes <= 0 || c.Scheduler.CompleteBookingsIntervalMinutes <= 0) {
		return fmt.Errorf("%w: scheduler intervals must be positive", ErrInvalidConfig)
	}
	return nil
}
