package api

import (
	"encoding/json"
	"time"

	"github.com/shaiso/celery-worker/internal/backend"
	"github.com/shaiso/celery-worker/internal/registry"
)

// TaskResponse — зарегистрированный handler и его операции.
type TaskResponse struct {
	Key        string   `json:"key"`
	Operations []string `json:"operations"`
}

// TasksFromRegistry собирает ответ /tasks.
func TasksFromRegistry(infos []registry.TaskInfo) []TaskResponse {
	result := make([]TaskResponse, len(infos))
	for i, info := range infos {
		result[i] = TaskResponse{Key: info.Key, Operations: info.Operations}
	}
	return result
}

// ResultResponse — сохранённый результат задачи.
type ResultResponse struct {
	TaskID    string          `json:"task_id"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result"`
	Traceback *string         `json:"traceback,omitempty"`
	DateDone  string          `json:"date_done"`
}

// ResultFromBackend конвертирует backend.ResultMeta в ResultResponse.
func ResultFromBackend(m *backend.ResultMeta) ResultResponse {
	return ResultResponse{
		TaskID:    m.TaskID,
		Status:    string(m.Status),
		Result:    m.Result,
		Traceback: m.Traceback,
		DateDone:  m.DateDone.Format(time.RFC3339),
	}
}
