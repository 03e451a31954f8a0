package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/usersvc/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormDB открывает соединение через GORM с теми же лимитами пула, что и sqlx-клиент.
// TranslateError включён, чтобы нарушение уникальности приходило как gorm.ErrDuplicatedKey.
func NewGormDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	start := time.Now()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("failed to open GORM connection", "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения с БД через GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения *sql.DB из GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	logger.Info("GORM connection pool established",
		"max_open_conns", cfg.DB.MaxOpenConns,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return db, nil
}
