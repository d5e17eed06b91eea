package tasks

import (
	"context"
	"fmt"
	"math"

	"github.com/shaiso/celery-worker/internal/registry"
)

// Math — обработчик "Math".
func Math() *registry.Handler {
	return registry.NewHandler("Math",
		registry.Op2("add", add),
	)
}

func add(_ context.Context, a, b float64) (float64, error) {
	sum := a + b
	if math.IsInf(sum, 0) {
		return 0, fmt.Errorf("overflow: %v + %v", a, b)
	}
	return sum, nil
}
