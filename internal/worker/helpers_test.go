package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/celery-worker/internal/registry"
)

var errKaboom = errors.New("kaboom")

// fakeAck записывает решения по сообщениям.
type fakeAck struct {
	mu      sync.Mutex
	acks    []uint64
	rejects []uint64
	nacks   []uint64
	requeue []bool
}

func (a *fakeAck) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks = append(a.acks, tag)
	return nil
}

func (a *fakeAck) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks = append(a.nacks, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejects = append(a.rejects, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *fakeAck) counts() (acks, rejects, nacks int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.acks), len(a.rejects), len(a.nacks)
}

// report — один вызов backend'а.
type report struct {
	TaskID        string
	ReplyTo       string
	CorrelationID string
	Value         any
	Err           error
	Success       bool
}

// fakeBackend записывает отчёты.
type fakeBackend struct {
	mu      sync.Mutex
	reports []report
	fail    error
	closed  bool
}

func (b *fakeBackend) ReportResult(_ context.Context, taskID, replyTo, correlationID string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = append(b.reports, report{TaskID: taskID, ReplyTo: replyTo, CorrelationID: correlationID, Value: value, Success: true})
	return b.fail
}

func (b *fakeBackend) ReportException(_ context.Context, taskID, replyTo, correlationID string, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = append(b.reports, report{TaskID: taskID, ReplyTo: replyTo, CorrelationID: correlationID, Err: err})
	return b.fail
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBackend) all() []report {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]report(nil), b.reports...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRegistry — реестр с задачами для тестов.
// tracker считает одновременные вызовы Slow#wait, release и started управляют Slow#block.
func testRegistry(tracker *concurrencyTracker, release <-chan struct{}, started chan<- struct{}) *registry.Registry {
	reg := registry.New()
	reg.MustRegister(
		registry.NewHandler("Greeter",
			registry.Op1("sayHello", func(_ context.Context, text string) (string, error) {
				return "Hello " + text, nil
			}),
		),
		registry.NewHandler("Math",
			registry.Op2("add", func(_ context.Context, a, b int) (int, error) {
				return a + b, nil
			}),
		),
		registry.NewHandler("Failing",
			registry.Op0("run", func(context.Context) (any, error) {
				return nil, errKaboom
			}),
			registry.Op0("panic", func(context.Context) (any, error) {
				panic("task exploded")
			}),
		),
		registry.NewHandler("Slow",
			registry.Op1("wait", func(_ context.Context, ms int) (int, error) {
				if tracker != nil {
					tracker.enter()
					defer tracker.leave()
				}
				time.Sleep(time.Duration(ms) * time.Millisecond)
				return ms, nil
			}),
			registry.Op0("block", func(context.Context) (bool, error) {
				if started != nil {
					started <- struct{}{}
				}
				if release != nil {
					<-release
				}
				return true, nil
			}),
		),
	)
	return reg
}

// concurrencyTracker фиксирует максимальное число одновременных вызовов.
type concurrencyTracker struct {
	mu      sync.Mutex
	current int
	max     int
}

func (t *concurrencyTracker) enter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	if t.current > t.max {
		t.max = t.current
	}
}

func (t *concurrencyTracker) leave() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current--
}

func (t *concurrencyTracker) peak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.max
}

// delivery собирает amqp.Delivery задачи.
func delivery(ack amqp.Acknowledger, tag uint64, id, task, body string) amqp.Delivery {
	headers := amqp.Table{}
	if id != "" {
		headers["id"] = id
	}
	if task != "" {
		headers["task"] = task
	}
	return amqp.Delivery{
		Acknowledger:    ack,
		DeliveryTag:     tag,
		Headers:         headers,
		ReplyTo:         "reply-queue",
		CorrelationId:   "corr-" + id,
		ContentEncoding: "utf-8",
		ContentType:     "application/json",
		Body:            []byte(body),
	}
}
