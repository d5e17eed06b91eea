package backend

import (
	"context"
	"log/slog"
)

// LogBackend только логирует исходы задач.
type LogBackend struct {
	logger *slog.Logger
}

// NewLogBackend создаёт LogBackend.
func NewLogBackend(logger *slog.Logger) *LogBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogBackend{logger: logger}
}

func (b *LogBackend) ReportResult(_ context.Context, taskID, _, _ string, value any) error {
	b.logger.Debug("task result", "task_id", taskID, "result", value)
	return nil
}

func (b *LogBackend) ReportException(_ context.Context, taskID, _, _ string, err error) error {
	b.logger.Debug("task exception", "task_id", taskID, "error", err)
	return nil
}

func (b *LogBackend) Close() error {
	return nil
}
