package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/usersvc/internal/config"
	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Client представляет пул соединений с PostgreSQL.
// Соединение выдаётся на один вызов репозитория и всегда возвращается в пул.
type Client struct {
	DB             *sqlx.DB
	acquireTimeout time.Duration
	logger         *slog.Logger
}

// NewClient открывает пул соединений и проверяет доступность базы
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open PostgreSQL connection", "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения с БД: %w", err)
	}

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	logger.Info("PostgreSQL connection pool established",
		"max_open_conns", cfg.DB.MaxOpenConns,
		"acquire_timeout", cfg.DB.AcquireTimeout.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return NewClientFromDB(db, cfg.DB.AcquireTimeout, logger), nil
}

// NewClientFromDB оборачивает уже открытый пул
func NewClientFromDB(db *sqlx.DB, acquireTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{DB: db, acquireTimeout: acquireTimeout, logger: logger}
}

// Acquire ждёт свободное соединение не дольше acquireTimeout.
// Вызывающий обязан закрыть соединение.
func (c *Client) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	const op = "database.client.Acquire"

	actx, cancel := context.WithTimeout(ctx, c.acquireTimeout)
	defer cancel()

	conn, err := c.DB.Connx(actx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ClassifyAcquireError(ctx, err))
	}
	return conn, nil
}

// WithConn выдаёт соединение на время fn и возвращает его в пул на любом пути выхода.
func (c *Client) WithConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := c.Acquire(ctx)
	if err != nil {
		c.logger.Warn("failed to acquire database connection", "error", err)
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			c.logger.Error("failed to release database connection", "error", cerr)
		}
	}()

	return fn(conn)
}

// ClassifyAcquireError переводит ошибку ожидания соединения в доменную.
// Истечение таймаута ожидания (а не отмена запроса клиентом) означает исчерпание пула.
func ClassifyAcquireError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return domain.ErrPoolExhausted
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

// Ping проверяет доступность базы
func (c *Client) Ping(ctx context.Context) error {
	return c.WithConn(ctx, func(conn *sqlx.Conn) error {
		return conn.PingContext(ctx)
	})
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
