package backend

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend получает исходы задач.
type Backend interface {
	ReportResult(ctx context.Context, taskID, replyTo, correlationID string, value any) error
	ReportException(ctx context.Context, taskID, replyTo, correlationID string, err error) error
	Close() error
}

// Типы backend'ов в конфигурации.
const (
	KindRPC      = "rpc"
	KindPostgres = "postgres"
	KindNone     = "none"
)

// Options — зависимости, из которых собирается backend.
type Options struct {
	// Kind — rpc, postgres или none.
	Kind string

	// Publisher и Exchange — для rpc.
	Publisher Publisher
	Exchange  string

	// DSN — для postgres.
	DSN string

	Logger *slog.Logger
}

// New создаёт backend по типу из конфигурации.
// Для postgres открывает пул и применяет миграции.
func New(ctx context.Context, opts Options) (Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Kind {
	case KindRPC, "":
		if opts.Publisher == nil {
			return nil, fmt.Errorf("rpc backend requires a broker publisher")
		}
		return NewRPCBackend(opts.Publisher, opts.Exchange, logger), nil

	case KindPostgres:
		pool, err := NewPool(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return NewPostgresBackend(pool, logger), nil

	case KindNone:
		return NewLogBackend(logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Kind)
	}
}
