package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/shaiso/celery-worker/internal/mq"
	"github.com/shaiso/celery-worker/internal/registry"
	"github.com/shaiso/celery-worker/internal/telemetry"
)

// Default configuration values.
const (
	defaultConcurrency = 2
	defaultPrefetch    = 2
)

// Worker потребляет задачи из очереди celery и выполняет их.
//
// Worker состоит из Concurrency независимых слотов. У каждого слота
// собственный AMQP канал, собственный Gate и собственный Consumer,
// так что в слоте в любой момент выполняется не больше одной задачи.
// Общий между слотами только реестр задач, который после старта
// доступен только на чтение.
type Worker struct {
	conn       *mq.Connection
	queue      string
	prefetch   int
	dispatcher *Dispatcher
	backend    Backend
	slots      []*slot

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    atomic.Bool
}

// slot — одна единица параллелизма воркера.
type slot struct {
	id       int
	gate     *Gate
	handler  *Consumer
	consumer *mq.Consumer
}

// Config — конфигурация Worker.
type Config struct {
	// Conn — соединение с брокером.
	Conn *mq.Connection

	// Queue — очередь задач (default: celery).
	Queue string

	// Concurrency — число слотов (default: 2).
	Concurrency int

	// Prefetch — QoS каждого слота (default: 2).
	Prefetch int

	// Registry — реестр задач. Запечатывается в New.
	Registry *registry.Registry

	// Backend — получатель результатов.
	Backend Backend

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) (*Worker, error) {
	if cfg.Registry == nil {
		return nil, errors.New("worker: registry is required")
	}
	if cfg.Backend == nil {
		return nil, errors.New("worker: backend is required")
	}

	queue := cfg.Queue
	if queue == "" {
		queue = mq.DefaultQueue
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Worker{
		conn:       cfg.Conn,
		queue:      queue,
		prefetch:   prefetch,
		dispatcher: NewDispatcher(cfg.Registry),
		backend:    cfg.Backend,
		logger:     logger,
	}

	for i := 0; i < concurrency; i++ {
		slotLogger := telemetry.WithSlot(logger, i)
		gate := NewGate()
		w.slots = append(w.slots, &slot{
			id:      i,
			gate:    gate,
			handler: NewConsumer(w.dispatcher, gate, cfg.Backend, slotLogger),
		})
	}

	return w, nil
}

// Keys возвращает зарегистрированные ключи задач.
func (w *Worker) Keys() []string {
	return w.dispatcher.Registry().Keys()
}

// Start запускает потребление во всех слотах и возвращает управление.
func (w *Worker) Start(ctx context.Context) error {
	if w.stopped.Load() {
		return ErrWorkerStopped
	}
	if w.conn == nil {
		return errors.New("worker: broker connection is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"queue", w.queue,
		"concurrency", len(w.slots),
		"prefetch", w.prefetch,
	)

	host, _ := os.Hostname()

	for _, s := range w.slots {
		s.consumer = mq.NewConsumer(w.conn, telemetry.WithSlot(w.logger, s.id), mq.ConsumerConfig{
			Queue:    w.queue,
			Tag:      fmt.Sprintf("celery-worker@%s-%d-%d", host, os.Getpid(), s.id),
			Handler:  s.handler.HandleDelivery,
			Prefetch: w.prefetch,
		})

		w.wg.Add(1)
		go func(s *slot) {
			defer w.wg.Done()
			if err := s.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("slot consumer error", "slot", s.id, "error", err)
			}
		}(s)
	}

	w.logger.Info("worker started", "known_tasks", w.Keys())
	return nil
}

// Stop останавливает Worker.
//
// Слоты перестают принимать сообщения, затем Stop ждёт, пока каждый
// слот освободит свой gate, и закрывает backend. Выполняющаяся задача
// не прерывается.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.stopped.Store(true)
		w.logger.Info("stopping worker...")

		for _, s := range w.slots {
			if s.consumer != nil {
				s.consumer.Stop()
			}
		}

		if w.cancelFunc != nil {
			w.cancelFunc()
		}

		w.Drain()
		w.wg.Wait()

		if err := w.backend.Close(); err != nil {
			w.logger.Warn("failed to close backend", "error", err)
		}

		w.logger.Info("worker stopped")
	})
}

// Drain блокируется, пока ни в одном слоте не выполняется задача.
func (w *Worker) Drain() {
	for _, s := range w.slots {
		s.gate.Drain()
	}
}
