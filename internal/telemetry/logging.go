package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel определяет уровень логирования из переменной окружения.
// Возможные значения: DEBUG, INFO, WARN, ERROR
// По умолчанию: INFO
func LogLevel() slog.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel переводит строку уровня в slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger инициализирует глобальный логгер.
//
// Формат вывода определяется переменной LOG_FORMAT:
//   - "json" (по умолчанию) — JSON формат для production
//   - "text" — человекочитаемый формат для разработки
//
// Если задана LOG_FILE, логи дополнительно пишутся в файл с ротацией.
func SetupLogger() *slog.Logger {
	var out io.Writer = os.Stdout
	if path := os.Getenv("LOG_FILE"); path != "" {
		out = io.MultiWriter(os.Stdout, RotatingFile(path))
	}

	logger := NewLogger(out, LogLevel(), os.Getenv("LOG_FORMAT"))
	slog.SetDefault(logger)

	return logger
}

// NewLogger создаёт логгер с указанным выводом, уровнем и форматом.
func NewLogger(out io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler)
}

// RotatingFile возвращает writer с ротацией по размеру.
func RotatingFile(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     14, // дней
		Compress:   true,
	}
}

// Ключи контекста для передачи данных в логгер.
type ctxKey string

const (
	// CtxLogger — ключ для логгера в контексте.
	CtxLogger ctxKey = "logger"
)

// WithLogger добавляет логгер в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext извлекает логгер из контекста.
// Если логгер не найден, возвращает глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithTaskID возвращает логгер с добавленными task_id и task.
func WithTaskID(logger *slog.Logger, taskID, taskName string) *slog.Logger {
	return logger.With("task_id", taskID, "task", taskName)
}

// WithSlot возвращает логгер с номером слота воркера.
func WithSlot(logger *slog.Logger, slot int) *slog.Logger {
	return logger.With("slot", slot)
}
