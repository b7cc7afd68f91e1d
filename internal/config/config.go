package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса (config.toml + переопределения из окружения)
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Store    StoreConfig    `toml:"store"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Booking  BookingConfig  `toml:"booking"`
	Meetings MeetingsConfig `toml:"meetings"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// StoreConfig выбор реализации документного хранилища
type StoreConfig struct {
	Driver string `toml:"driver"` // memory | postgres
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
	NotifyChannel   string `toml:"notify_channel"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// RedisConfig настройки резервирования слотов в Redis
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// BookingConfig параметры бизнес-процесса бронирования
type BookingConfig struct {
	HorizonDays        int  `toml:"horizon_days"`
	DefaultOccurrences int  `toml:"default_occurrences"`
	MaxOccurrences     int  `toml:"max_occurrences"`
	RejectConflicts    bool `toml:"reject_conflicts"`
	AtomicSeries       bool `toml:"atomic_series"`
	RecheckOnApprove   bool `toml:"recheck_on_approve"`
}

// MeetingsConfig сервис календарной интеграции (ссылки на видеозвонки)
type MeetingsConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// Load читает TOML файл, затем применяет переменные окружения (и .env, если есть)
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// .env не обязателен
	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port must be positive")
	}
	switch c.Store.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Booking.HorizonDays <= 0 {
		return fmt.Errorf("config: booking.horizon_days must be positive")
	}
	if c.Booking.DefaultOccurrences <= 0 {
		return fmt.Errorf("config: booking.default_occurrences must be positive")
	}
	if c.Booking.MaxOccurrences < c.Booking.DefaultOccurrences {
		return fmt.Errorf("config: booking.max_occurrences must be >= default_occurrences")
	}
	if c.Meetings.Enabled && c.Meetings.URL == "" {
		return fmt.Errorf("config: meetings.url is required when meetings are enabled")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "smc_scheduling_service",
		},
		Store: StoreConfig{Driver: "memory"},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "scheduling",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			NotifyChannel:   "document_changes",
		},
		Redis: RedisConfig{Addr: "127.0.0.1:6379"},
		Booking: BookingConfig{
			HorizonDays:        14,
			DefaultOccurrences: 12,
			MaxOccurrences:     52,
		},
		Meetings: MeetingsConfig{Timeout: 5},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Username, "REDIS_USERNAME")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Store.Driver, "STORE_DRIVER")
	setInt(&cfg.Server.HTTPPort, "HTTP_PORT")
	setString(&cfg.Logs.Level, "LOG_LEVEL")
	setString(&cfg.Meetings.URL, "MEETING_SERVICE_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			fmt.Fprintf(os.Stderr, "invalid int for %s=%q, keeping %d\n", key, v, *dst)
		}
	}
}
