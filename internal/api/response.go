package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/celery-worker/internal/backend"
)

// ErrorCode — код ошибки в ответах воркера.
type ErrorCode string

const (
	// ErrCodeNotFound — /results: задача не записана в celery_taskmeta.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeUnavailable — /healthz: нет соединения с брокером.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"

	// ErrCodeInternalError — сбой хранилища результатов или паника обработчика.
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse — тело ответа с ошибкой: {"error": {"code", "message"}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — код и текст ошибки.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DataResponse — тело /results/{taskID}: {"data": ResultResponse}.
type DataResponse struct {
	Data any `json:"data"`
}

// ListResponse — тело /tasks: {"data": [TaskResponse...], "total": n}.
type ListResponse struct {
	Data  any `json:"data"`
	Total int `json:"total,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeInternal логирует причину, клиенту отдаёт только код.
func writeInternal(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// writeResultError переводит ошибку хранилища результатов задачи taskID в ответ:
// неизвестная задача — 404, остальное — 500.
func writeResultError(w http.ResponseWriter, logger *slog.Logger, taskID string, err error) {
	if errors.Is(err, backend.ErrNotFound) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "no result stored for task "+taskID)
		return
	}
	writeInternal(w, logger.With("task_id", taskID), err)
}
