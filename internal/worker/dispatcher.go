package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/shaiso/celery-worker/internal/registry"
)

// Dispatcher находит операцию по имени задачи и вызывает её.
type Dispatcher struct {
	registry *registry.Registry
}

// NewDispatcher создаёт Dispatcher над реестром и запечатывает реестр:
// после этого регистрация новых задач невозможна.
func NewDispatcher(reg *registry.Registry) *Dispatcher {
	reg.Seal()
	return &Dispatcher{registry: reg}
}

// Registry возвращает реестр, с которым работает Dispatcher.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// Resolve находит операцию по имени вида key#operation.
//
// Имя должно делиться ровно на два непустых сегмента. Ключ должен быть
// зарегистрирован, а операция с таким именем — ровно одна. Все ошибки — *DispatchError.
func (d *Dispatcher) Resolve(taskName string) (*registry.Operation, error) {
	parts := strings.Split(taskName, registry.Separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, &DispatchError{Task: taskName, Err: fmt.Errorf("%w, got %q", ErrBadTaskName, taskName)}
	}
	key, opName := parts[0], parts[1]

	handler, ok := d.registry.Lookup(key)
	if !ok {
		return nil, &DispatchError{Task: taskName, Err: fmt.Errorf("%w: %s", ErrUnknownTask, key)}
	}

	matches := handler.Match(opName)
	switch len(matches) {
	case 0:
		return nil, &DispatchError{Task: taskName, Err: fmt.Errorf("%w: %s has no %s", ErrNoSuchOperation, key, opName)}
	case 1:
		return matches[0], nil
	default:
		return nil, &DispatchError{Task: taskName, Err: fmt.Errorf("%w: %s has %d operations named %s", ErrAmbiguousOperation, key, len(matches), opName)}
	}
}

// Invoke конвертирует позиционные аргументы в типы параметров и вызывает операцию.
//
// Аргумент i конвертируется в тип параметра i; лишние аргументы игнорируются,
// недостающий или неконвертируемый аргумент — *DispatchError.
// kwargs не передаются в вызов: поддерживается только позиционный вызов.
// Ошибка или паника тела операции возвращается как *TaskError.
func (d *Dispatcher) Invoke(ctx context.Context, taskName string, op *registry.Operation, args []json.RawMessage, _ map[string]json.RawMessage) (any, error) {
	values := make([]any, len(op.Params))
	for i, p := range op.Params {
		if i >= len(args) {
			return nil, &DispatchError{
				Task: taskName,
				Err:  fmt.Errorf("%w: %s missing argument %d", ErrBadArgument, op.Signature(), i),
			}
		}

		v, err := p.Decode(args[i])
		if err != nil {
			return nil, &DispatchError{
				Task: taskName,
				Err:  fmt.Errorf("%w: %s argument %d: %v", ErrBadArgument, op.Signature(), i, err),
			}
		}
		values[i] = v
	}

	return d.call(ctx, taskName, op, values)
}

// call вызывает тело операции. Паника тела — ошибка задачи, а не сбой воркера.
func (d *Dispatcher) call(ctx context.Context, taskName string, op *registry.Operation, values []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &TaskError{Task: taskName, Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()

	result, err = op.Invoke(ctx, values)
	if err != nil {
		return nil, &TaskError{Task: taskName, Err: err}
	}
	return result, nil
}

// Dispatch — Resolve и Invoke одним вызовом.
func (d *Dispatcher) Dispatch(ctx context.Context, taskName string, args []json.RawMessage, kwargs map[string]json.RawMessage) (any, error) {
	op, err := d.Resolve(taskName)
	if err != nil {
		return nil, err
	}
	return d.Invoke(ctx, taskName, op, args, kwargs)
}
