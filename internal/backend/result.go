package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Status — состояние задачи в протоколе результатов celery.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// ResultMeta — результат задачи в формате celery.
type ResultMeta struct {
	TaskID    string          `json:"task_id"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result"`
	Traceback *string         `json:"traceback"`
	Children  []any           `json:"children"`
	DateDone  time.Time       `json:"date_done"`
}

// ExceptionInfo — описание ошибки в поле result для FAILURE.
type ExceptionInfo struct {
	ExcType    string   `json:"exc_type"`
	ExcMessage []string `json:"exc_message"`
	ExcModule  string   `json:"exc_module"`
}

// RemoteError — ошибка задачи, полученная от backend'а.
type RemoteError struct {
	TaskID string
	Info   ExceptionInfo
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("task %s failed: %s: %s", e.TaskID, e.Info.ExcType, strings.Join(e.Info.ExcMessage, "; "))
}

// NewSuccess собирает ResultMeta успешной задачи.
//
// Если значение не сериализуется в JSON, результатом становится FAILURE
// с описанием ошибки сериализации: получатель всё равно узнает исход.
func NewSuccess(taskID string, value any) *ResultMeta {
	raw, err := json.Marshal(value)
	if err != nil {
		return NewFailure(taskID, fmt.Errorf("encode result: %w", err))
	}
	return &ResultMeta{
		TaskID:   taskID,
		Status:   StatusSuccess,
		Result:   raw,
		Children: []any{},
		DateDone: time.Now().UTC(),
	}
}

// NewFailure собирает ResultMeta задачи, завершившейся ошибкой.
func NewFailure(taskID string, taskErr error) *ResultMeta {
	info := ExceptionInfo{
		ExcType:    exceptionType(taskErr),
		ExcMessage: []string{errorMessage(taskErr)},
		ExcModule:  "builtins",
	}
	raw, _ := json.Marshal(info)
	traceback := errorMessage(taskErr)

	return &ResultMeta{
		TaskID:    taskID,
		Status:    StatusFailure,
		Result:    raw,
		Traceback: &traceback,
		Children:  []any{},
		DateDone:  time.Now().UTC(),
	}
}

// Err возвращает *RemoteError для FAILURE и nil для SUCCESS.
func (m *ResultMeta) Err() error {
	if m.Status == StatusSuccess {
		return nil
	}
	var info ExceptionInfo
	if err := json.Unmarshal(m.Result, &info); err != nil {
		info = ExceptionInfo{ExcType: "Exception", ExcMessage: []string{string(m.Result)}}
	}
	return &RemoteError{TaskID: m.TaskID, Info: info}
}

// Decode декодирует результат SUCCESS в v.
func (m *ResultMeta) Decode(v any) error {
	if err := m.Err(); err != nil {
		return err
	}
	return json.Unmarshal(m.Result, v)
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// exceptionType — имя типа ошибки без указателя и пакета.
// Ошибки из errors.New и fmt.Errorf называются Exception.
func exceptionType(err error) string {
	if err == nil {
		return "Exception"
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Info.ExcType
	}

	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch name := t.Name(); name {
	case "", "errorString", "wrapError", "wrapErrors", "joinError":
		return "Exception"
	default:
		return name
	}
}
