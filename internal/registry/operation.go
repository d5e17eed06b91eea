package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Param — объявленный параметр операции.
type Param struct {
	// Type — Go-тип параметра.
	Type reflect.Type

	decode func(raw json.RawMessage) (any, error)
}

// Decode конвертирует JSON-значение аргумента в тип параметра.
func (p Param) Decode(raw json.RawMessage) (any, error) {
	return p.decode(raw)
}

func param[T any]() Param {
	return Param{
		Type: reflect.TypeFor[T](),
		decode: func(raw json.RawMessage) (any, error) {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// arg приводит аргумент к типу параметра. JSON null для интерфейсного
// параметра приходит как nil и даёт нулевое значение.
func arg[T any](v any) T {
	t, _ := v.(T)
	return t
}

// Operation — именованная операция handler'а.
//
// Вызывается Dispatcher'ом с уже сконвертированными аргументами:
// len(args) == len(Params), args[i] имеет тип Params[i].Type.
type Operation struct {
	Name   string
	Params []Param

	call func(ctx context.Context, args []any) (any, error)
}

// Invoke вызывает тело операции.
func (o *Operation) Invoke(ctx context.Context, args []any) (any, error) {
	if len(args) != len(o.Params) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", o.Name, len(o.Params), len(args))
	}
	return o.call(ctx, args)
}

// Signature возвращает сигнатуру для логов и /tasks, например "add(int, int)".
func (o *Operation) Signature() string {
	types := make([]string, len(o.Params))
	for i, p := range o.Params {
		types[i] = p.Type.String()
	}
	return o.Name + "(" + strings.Join(types, ", ") + ")"
}

// Op0 создаёт операцию без аргументов.
func Op0[R any](name string, fn func(ctx context.Context) (R, error)) Operation {
	return Operation{
		Name: name,
		call: func(ctx context.Context, _ []any) (any, error) {
			return fn(ctx)
		},
	}
}

// Op1 создаёт операцию с одним позиционным аргументом.
func Op1[A, R any](name string, fn func(ctx context.Context, a A) (R, error)) Operation {
	return Operation{
		Name:   name,
		Params: []Param{param[A]()},
		call: func(ctx context.Context, args []any) (any, error) {
			return fn(ctx, arg[A](args[0]))
		},
	}
}

// Op2 создаёт операцию с двумя позиционными аргументами.
func Op2[A, B, R any](name string, fn func(ctx context.Context, a A, b B) (R, error)) Operation {
	return Operation{
		Name:   name,
		Params: []Param{param[A](), param[B]()},
		call: func(ctx context.Context, args []any) (any, error) {
			return fn(ctx, arg[A](args[0]), arg[B](args[1]))
		},
	}
}

// Op3 создаёт операцию с тремя позиционными аргументами.
func Op3[A, B, C, R any](name string, fn func(ctx context.Context, a A, b B, c C) (R, error)) Operation {
	return Operation{
		Name:   name,
		Params: []Param{param[A](), param[B](), param[C]()},
		call: func(ctx context.Context, args []any) (any, error) {
			return fn(ctx, arg[A](args[0]), arg[B](args[1]), arg[C](args[2]))
		},
	}
}
