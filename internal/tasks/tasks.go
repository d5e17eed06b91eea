package tasks

import (
	"errors"

	"github.com/shaiso/celery-worker/internal/registry"
)

// Handlers возвращает обработчики встроенных задач.
func Handlers() []*registry.Handler {
	return []*registry.Handler{
		Greeter(),
		Delay(),
		Transform(),
		Math(),
	}
}

// Register регистрирует встроенные задачи в reg.
func Register(reg *registry.Registry) error {
	var errs []error
	for _, h := range Handlers() {
		if err := reg.Register(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
