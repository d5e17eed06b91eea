package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Health сообщает, подключён ли воркер к брокеру.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	if !h.healthy() {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "broker disconnected")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ListTasks возвращает зарегистрированные задачи.
// GET /tasks
func (h *Handler) ListTasks(w http.ResponseWriter, _ *http.Request) {
	tasks := TasksFromRegistry(h.registry.Describe())
	writeJSON(w, http.StatusOK, ListResponse{Data: tasks, Total: len(tasks)})
}

// GetResult возвращает сохранённый результат задачи.
// GET /results/{taskID}
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	meta, err := h.results.Get(r.Context(), taskID)
	if err != nil {
		writeResultError(w, h.logger, taskID, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{Data: ResultFromBackend(meta)})
}
