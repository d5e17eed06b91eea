package worker

import (
	"errors"
	"fmt"
)

// Ошибки воркера.
var (
	// ErrBadTaskName — имя задачи не имеет вид key#operation.
	ErrBadTaskName = errors.New("task name must have form key#operation")

	// ErrUnknownTask — ключ задачи не зарегистрирован.
	ErrUnknownTask = errors.New("task not registered")

	// ErrNoSuchOperation — у handler'а нет операции с таким именем.
	ErrNoSuchOperation = errors.New("operation not found")

	// ErrAmbiguousOperation — у handler'а несколько операций с таким именем.
	ErrAmbiguousOperation = errors.New("ambiguous operation")

	// ErrBadArgument — позиционный аргумент отсутствует или не конвертируется в тип параметра.
	ErrBadArgument = errors.New("bad task argument")

	// ErrBadPayload — тело сообщения не является массивом [args, kwargs, ...].
	ErrBadPayload = errors.New("malformed task payload")

	// ErrUnsupportedEncoding — неизвестная content encoding.
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")

	// ErrMissingHeader — в сообщении нет обязательного заголовка.
	ErrMissingHeader = errors.New("missing message header")

	// ErrWorkerStopped — воркер остановлен.
	ErrWorkerStopped = errors.New("worker stopped")
)

// ProtocolError — сообщение не разбирается: тело, кодировка или заголовки.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// DispatchError — задачу невозможно вызвать в том виде, в котором она пришла.
type DispatchError struct {
	Task string
	Err  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %q: %v", e.Task, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// TaskError — тело задачи вернуло ошибку или паниковало. Err — исходная ошибка задачи
// или *PanicError.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// PanicError — паника, перехваченная при обработке сообщения.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap возвращает значение паники, если это error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
