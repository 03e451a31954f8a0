package di

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/GoArmGo/usersvc/internal/app"
	"github.com/GoArmGo/usersvc/internal/config"
	"github.com/GoArmGo/usersvc/internal/core/ports"
	"github.com/GoArmGo/usersvc/internal/database/client"
	"github.com/GoArmGo/usersvc/internal/database/memory"
	"github.com/GoArmGo/usersvc/internal/database/postgres"
	"github.com/GoArmGo/usersvc/internal/database/storage"
	"github.com/GoArmGo/usersvc/internal/logger"
	"github.com/GoArmGo/usersvc/internal/messaging"
	"github.com/GoArmGo/usersvc/internal/rabbitmq"
)

// BuildApp инициализирует все зависимости для режима mode и возвращает готовый объект App.
func BuildApp(mode string) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Логгер
	slogger := logger.NewSlog(logger.SlogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	return build(cfg, slogger, mode)
}

// build собирает приложение из готовой конфигурации. Воркеру хранилище не нужно, пул не открывается.
func build(cfg *config.Config, slogger *slog.Logger, mode string) (*app.App, error) {
	switch mode {
	case app.ModeServer:
	case app.ModeWorker:
		if !cfg.EventsEnabled() {
			return nil, errors.New("worker mode requires RABBITMQ_URL")
		}
	default:
		return nil, fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	var closers []io.Closer
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	// 3. Хранилище пользователей, только для HTTP-сервера
	var repo ports.UserRepository
	if mode == app.ModeServer {
		r, repoCloser, err := buildRepository(cfg, slogger)
		if err != nil {
			return nil, err
		}
		if repoCloser != nil {
			closers = append(closers, repoCloser)
		}
		repo = r
	}

	// 4. RabbitMQ: публикация событий для сервера и потребитель для воркера
	var consumer ports.UserEventConsumer
	if cfg.EventsEnabled() {
		mq, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, mq)
		if repo != nil {
			repo = messaging.NewPublishingRepository(repo, mq, slogger)
		}
		consumer = mq
	} else {
		slogger.Info("RABBITMQ_URL is empty, user events are disabled")
	}

	// 5. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, repo, consumer, closers...)

	slogger.Info("all dependencies initialized", "mode", mode, "storage_driver", cfg.StorageDriver)
	return application, nil
}

// buildRepository выбирает реализацию репозитория по STORAGE_DRIVER
func buildRepository(cfg *config.Config, logger *slog.Logger) (ports.UserRepository, io.Closer, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLX:
		pool, err := client.NewClient(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewUserStorage(pool, logger), pool, nil

	case config.DriverGorm:
		db, err := postgres.NewGormDB(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("get sql.DB from gorm: %w", err)
		}
		return postgres.NewGormUserStorage(db, cfg.DB.AcquireTimeout, logger), sqlDB, nil

	case config.DriverMemory:
		logger.Warn("using in-memory user storage, data is lost on restart")
		return memory.NewUserStorage(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
