package backend

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB — часть pgxpool.Pool, которую использует PostgresBackend.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend хранит результаты в таблице celery_taskmeta.
type PostgresBackend struct {
	db     DB
	logger *slog.Logger
}

// NewPostgresBackend создаёт PostgresBackend.
func NewPostgresBackend(db DB, logger *slog.Logger) *PostgresBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBackend{db: db, logger: logger}
}

// NewPool создаёт пул соединений и проверяет доступность БД.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// Migrate применяет миграции схемы celery_taskmeta.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ReportResult сохраняет SUCCESS.
func (b *PostgresBackend) ReportResult(ctx context.Context, taskID, _, _ string, value any) error {
	return b.Store(ctx, NewSuccess(taskID, value))
}

// ReportException сохраняет FAILURE.
func (b *PostgresBackend) ReportException(ctx context.Context, taskID, _, _ string, err error) error {
	return b.Store(ctx, NewFailure(taskID, err))
}

// Store записывает результат. Повторная запись того же task_id перезаписывает его.
func (b *PostgresBackend) Store(ctx context.Context, meta *ResultMeta) error {
	query := `
		INSERT INTO celery_taskmeta (task_id, status, result, traceback, date_done)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (task_id) DO UPDATE
		SET status = EXCLUDED.status,
		    result = EXCLUDED.result,
		    traceback = EXCLUDED.traceback,
		    date_done = EXCLUDED.date_done
	`
	_, err := b.db.Exec(ctx, query,
		meta.TaskID,
		string(meta.Status),
		[]byte(meta.Result),
		meta.Traceback,
		meta.DateDone,
	)
	if err != nil {
		return fmt.Errorf("store result of %s: %w", meta.TaskID, err)
	}

	b.logger.Debug("result stored", "task_id", meta.TaskID, "status", meta.Status)
	return nil
}

// Get возвращает результат задачи.
func (b *PostgresBackend) Get(ctx context.Context, taskID string) (*ResultMeta, error) {
	query := `
		SELECT task_id, status, result, traceback, date_done
		FROM celery_taskmeta
		WHERE task_id = $1
	`

	var (
		meta   ResultMeta
		status string
		result []byte
	)
	err := b.db.QueryRow(ctx, query, taskID).Scan(&meta.TaskID, &status, &result, &meta.Traceback, &meta.DateDone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, taskID)
		}
		return nil, fmt.Errorf("get result of %s: %w", taskID, err)
	}

	meta.Status = Status(status)
	meta.Result = result
	meta.Children = []any{}
	return &meta, nil
}

// Close закрывает пул, если backend им владеет.
func (b *PostgresBackend) Close() error {
	if c, ok := b.db.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
