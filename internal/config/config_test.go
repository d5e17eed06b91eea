package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWorker_Defaults(t *testing.T) {
	cfg, err := LoadWorker()
	require.NoError(t, err)

	assert.Equal(t, "celery", cfg.Queue)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 2, cfg.Prefetch)
	assert.Equal(t, "rpc", cfg.Backend)
	assert.Equal(t, 8082, cfg.Port)
	assert.NoError(t, Validate(cfg))
}

func TestLoadWorker_Env(t *testing.T) {
	t.Setenv("CELERY_QUEUE", "tasks")
	t.Setenv("CELERY_CONCURRENCY", "8")
	t.Setenv("CELERY_BACKEND", "none")

	cfg, err := LoadWorker()
	require.NoError(t, err)

	assert.Equal(t, "tasks", cfg.Queue)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "none", cfg.Backend)
}

func TestLoadWorker_BadNumber(t *testing.T) {
	t.Setenv("CELERY_CONCURRENCY", "many")

	_, err := LoadWorker()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := LoadWorker()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Worker)
	}{
		{"zero concurrency", func(c *Worker) { c.Concurrency = 0 }},
		{"unknown backend", func(c *Worker) { c.Backend = "redis" }},
		{"postgres without dsn", func(c *Worker) { c.Backend = "postgres" }},
		{"empty queue", func(c *Worker) { c.Queue = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}

	cfg := base
	cfg.Backend = "postgres"
	cfg.DatabaseURL = "postgresql://localhost/celery"
	assert.NoError(t, Validate(cfg))
}

func TestLoadClient(t *testing.T) {
	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "celery", cfg.Queue)
	assert.NoError(t, Validate(cfg))
}

func TestLoadClient_ResultExchange(t *testing.T) {
	t.Setenv("CELERY_RESULT_EXCHANGE", "celery-results")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "celery-results", cfg.ResultExchange)
}
