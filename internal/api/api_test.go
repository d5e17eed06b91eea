package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/celery-worker/internal/backend"
	"github.com/shaiso/celery-worker/internal/registry"
)

type fakeStore struct {
	results map[string]*backend.ResultMeta
	err     error
}

func (s *fakeStore) Get(_ context.Context, taskID string) (*backend.ResultMeta, error) {
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.results[taskID]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return m, nil
}

func testRegistry() *registry.Registry {
	reg := registry.New()
	reg.MustRegister(
		registry.NewHandler("Greeter",
			registry.Op1("sayHello", func(_ context.Context, s string) (string, error) { return "Hello " + s, nil }),
		),
	)
	return reg
}

func newTestHandler(store ResultStore, healthy func() bool) *Handler {
	return NewHandler(Config{
		Registry: testRegistry(),
		Results:  store,
		Healthy:  healthy,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestHandler(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(newTestHandler(nil, func() bool { return false }), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListTasks(t *testing.T) {
	rec := serve(newTestHandler(nil, nil), "/tasks")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []TaskResponse `json:"data"`
		Total int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Greeter", resp.Data[0].Key)
	assert.Equal(t, []string{"sayHello(string)"}, resp.Data[0].Operations)
	assert.Equal(t, 1, resp.Total)
}

func TestMetrics(t *testing.T) {
	rec := serve(newTestHandler(nil, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetResult(t *testing.T) {
	meta := backend.NewSuccess("t-1", "Hello world")
	meta.DateDone = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &fakeStore{results: map[string]*backend.ResultMeta{"t-1": meta}}

	rec := serve(newTestHandler(store, nil), "/results/t-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "t-1", resp.Data.TaskID)
	assert.Equal(t, "SUCCESS", resp.Data.Status)
	assert.JSONEq(t, `"Hello world"`, string(resp.Data.Result))
	assert.Equal(t, "2024-01-02T03:04:05Z", resp.Data.DateDone)
}

func TestGetResult_NotFound(t *testing.T) {
	rec := serve(newTestHandler(&fakeStore{}, nil), "/results/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "no result stored for task missing", resp.Error.Message)
}

func TestGetResult_StoreError(t *testing.T) {
	rec := serve(newTestHandler(&fakeStore{err: errors.New("db down")}, nil), "/results/t")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetResult_NoStore(t *testing.T) {
	rec := serve(newTestHandler(nil, nil), "/results/t-1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
