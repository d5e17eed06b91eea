package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/celery-worker/internal/backend"
	"github.com/shaiso/celery-worker/internal/registry"
)

// ResultStore — хранилище результатов, из которого читает /results.
// Реализуется *backend.PostgresBackend.
type ResultStore interface {
	Get(ctx context.Context, taskID string) (*backend.ResultMeta, error)
}

// Handler — обработчик HTTP с зависимостями.
type Handler struct {
	registry *registry.Registry
	results  ResultStore
	healthy  func() bool
	logger   *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	// Registry — реестр задач для /tasks.
	Registry *registry.Registry

	// Results — хранилище результатов. nil — /results не регистрируется.
	Results ResultStore

	// Healthy сообщает, подключён ли воркер к брокеру. nil — всегда true.
	Healthy func() bool

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Healthy == nil {
		cfg.Healthy = func() bool { return true }
	}
	return &Handler{
		registry: cfg.Registry,
		results:  cfg.Results,
		healthy:  cfg.Healthy,
		logger:   cfg.Logger,
	}
}
