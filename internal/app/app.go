package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/usersvc/internal/config"
	"github.com/GoArmGo/usersvc/internal/core/ports"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

type App struct {
	Config        *config.Config
	logger        *slog.Logger
	repo          ports.UserRepository
	eventConsumer ports.UserEventConsumer
	closers       []io.Closer
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	repo ports.UserRepository,
	eventConsumer ports.UserEventConsumer,
	closers ...io.Closer,
) *App {
	return &App{
		Config:        cfg,
		logger:        logger,
		repo:          repo,
		eventConsumer: eventConsumer,
		closers:       closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и ждёт SIGINT/SIGTERM
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = runServer(ctx, a.Config, a.repo, a.logger)
	case ModeWorker:
		if a.eventConsumer == nil {
			err = errors.New("worker mode requires RABBITMQ_URL")
			break
		}
		err = runWorker(ctx, a.eventConsumer, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения в обратном порядке создания
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
