package tasks

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shaiso/celery-worker/internal/registry"
	"github.com/shaiso/celery-worker/internal/telemetry"
)

// MaxDelay — верхняя граница Delay#sleep.
const MaxDelay = 10 * time.Minute

// Delay — обработчик "Delay".
//
// sleep ждёт указанное число секунд и возвращает его. Ожидание
// прерывается отменой контекста.
func Delay() *registry.Handler {
	return registry.NewHandler("Delay",
		registry.Op1("sleep", sleep),
	)
}

func sleep(ctx context.Context, seconds float64) (float64, error) {
	if seconds < 0 || math.IsNaN(seconds) {
		return 0, fmt.Errorf("invalid delay: %v", seconds)
	}
	// Граница проверяется до перевода в Duration: большие значения переполняют int64.
	if seconds > MaxDelay.Seconds() {
		return 0, fmt.Errorf("delay %vs exceeds %v", seconds, MaxDelay)
	}

	duration := time.Duration(seconds * float64(time.Second))

	telemetry.FromContext(ctx).Debug("sleeping", "duration", duration)

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return seconds, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
