package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Драйверы хранилища пользователей
const (
	DriverSQLX   = "sqlx"
	DriverGorm   = "gorm"
	DriverMemory = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlx"`
	ServerPort    string `env:"SERVER_PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Настройки пула соединений
	DB struct {
		MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
		MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
		ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
		AcquireTimeout  time.Duration `env:"DB_ACQUIRE_TIMEOUT" envDefault:"3s"`
	}

	// Пустой RABBITMQ_URL отключает публикацию событий
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"user_events"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет согласованность параметров.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLX, DriverGorm:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.StorageDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q (use sqlx, gorm or memory)", c.StorageDriver)
	}

	if c.DB.MaxOpenConns <= 0 {
		return errors.New("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.DB.AcquireTimeout <= 0 {
		return errors.New("DB_ACQUIRE_TIMEOUT must be positive")
	}
	return nil
}

// EventsEnabled сообщает, настроена ли публикация событий в RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.RabbitMQURL != ""
}
