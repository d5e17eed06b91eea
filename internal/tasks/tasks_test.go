package tasks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/celery-worker/internal/registry"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, Register(reg))
	return reg
}

// call находит операцию key#op и вызывает её с JSON-аргументами.
func call(t *testing.T, ctx context.Context, reg *registry.Registry, key, op string, rawArgs ...string) (any, error) {
	t.Helper()

	h, ok := reg.Lookup(key)
	require.True(t, ok, "handler %s", key)
	ops := h.Match(op)
	require.Len(t, ops, 1)

	args := make([]any, len(rawArgs))
	for i, raw := range rawArgs {
		v, err := ops[0].Params[i].Decode(json.RawMessage(raw))
		require.NoError(t, err)
		args[i] = v
	}
	return ops[0].Invoke(ctx, args)
}

func TestRegister_Keys(t *testing.T) {
	reg := newRegistry(t)
	assert.Equal(t, []string{"Delay", "Greeter", "Math", "Transform"}, reg.Keys())
}

func TestRegister_Twice(t *testing.T) {
	reg := newRegistry(t)
	assert.ErrorIs(t, Register(reg), registry.ErrDuplicateKey)
}

func TestGreeter_SayHello(t *testing.T) {
	got, err := call(t, context.Background(), newRegistry(t), "Greeter", "sayHello", `"world"`)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)
}

func TestMath_Add(t *testing.T) {
	got, err := call(t, context.Background(), newRegistry(t), "Math", "add", `2`, `3.5`)
	require.NoError(t, err)
	assert.Equal(t, 5.5, got)
}

func TestTransform_Echo(t *testing.T) {
	reg := newRegistry(t)

	got, err := call(t, context.Background(), reg, "Transform", "echo", `{"a": [1, 2]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{float64(1), float64(2)}}, got)

	got, err = call(t, context.Background(), reg, "Transform", "echo", `null`)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelay_Sleep(t *testing.T) {
	start := time.Now()
	got, err := call(t, context.Background(), newRegistry(t), "Delay", "sleep", `0.05`)
	require.NoError(t, err)

	assert.Equal(t, 0.05, got)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDelay_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := call(t, ctx, newRegistry(t), "Delay", "sleep", `5`)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDelay_SleepInvalid(t *testing.T) {
	reg := newRegistry(t)

	_, err := call(t, context.Background(), reg, "Delay", "sleep", `-1`)
	assert.Error(t, err)

	_, err = call(t, context.Background(), reg, "Delay", "sleep", `3600`)
	assert.Error(t, err)
}

func TestDelay_SleepHugeValueRejected(t *testing.T) {
	reg := newRegistry(t)

	// 1e19 секунд не помещается в time.Duration
	for _, raw := range []string{`1e19`, `1e300`} {
		start := time.Now()
		_, err := call(t, context.Background(), reg, "Delay", "sleep", raw)
		assert.ErrorContains(t, err, "exceeds", raw)
		assert.Less(t, time.Since(start), time.Second)
	}
}
