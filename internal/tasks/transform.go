package tasks

import (
	"context"

	"github.com/shaiso/celery-worker/internal/registry"
)

// Transform — обработчик "Transform". echo возвращает аргумент без изменений.
func Transform() *registry.Handler {
	return registry.NewHandler("Transform",
		registry.Op1("echo", echo),
	)
}

func echo(_ context.Context, value any) (any, error) {
	return value, nil
}
