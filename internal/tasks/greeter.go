package tasks

import (
	"context"

	"github.com/shaiso/celery-worker/internal/registry"
)

// Greeter — обработчик "Greeter".
func Greeter() *registry.Handler {
	return registry.NewHandler("Greeter",
		registry.Op1("sayHello", sayHello),
	)
}

func sayHello(_ context.Context, text string) (string, error) {
	return "Hello " + text, nil
}
