package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/usersvc/internal/config"
	"github.com/GoArmGo/usersvc/internal/core/ports"
	"github.com/GoArmGo/usersvc/internal/handler"
	"golang.org/x/sync/errgroup"
)

// runServer обслуживает HTTP до отмены ctx, затем корректно завершает сервер
func runServer(ctx context.Context, cfg *config.Config, repo ports.UserRepository, logger *slog.Logger) error {
	userHandler := handler.NewUserHandler(repo, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler.NewRouter(userHandler, logger, cfg.RequestTimeout),
	}

	return serve(ctx, server, cfg, logger)
}

func serve(ctx context.Context, server *http.Server, cfg *config.Config, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка при запуске сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	})

	return g.Wait()
}
