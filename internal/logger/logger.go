package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// SlogConfig описывает параметры логгера
type SlogConfig struct {
	Level  string    // "debug", "info", "warn", "error"
	Format string    // "json" или "text"
	Output io.Writer // по умолчанию os.Stdout
}

// NewSlog создаёт и настраивает slog.Logger
func NewSlog(cfg SlogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(out, opts))
	}

	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey && len(groups) == 0 {
			a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
		}
		return a
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

// ParseLevel переводит строковый уровень в slog.Level, неизвестные значения дают info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard возвращает логгер, который ничего не пишет. Удобен в тестах.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
