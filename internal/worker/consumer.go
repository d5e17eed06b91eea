package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/celery-worker/internal/telemetry"
)

// Backend получает результат или ошибку задачи.
//
// Вызовы синхронны: ack/reject сообщения выполняется после возврата.
type Backend interface {
	ReportResult(ctx context.Context, taskID, replyTo, correlationID string, value any) error
	ReportException(ctx context.Context, taskID, replyTo, correlationID string, err error) error
	Close() error
}

// Consumer обрабатывает доставки одного слота воркера.
//
// Для каждой доставки ровно один отчёт backend'у и ровно одно
// из ack/reject. Ошибка backend'а логируется, решение по сообщению
// всё равно выполняется, слот продолжает работу.
type Consumer struct {
	dispatcher *Dispatcher
	gate       *Gate
	backend    Backend
	logger     *slog.Logger
}

// NewConsumer создаёт Consumer слота. gate — собственный gate слота.
func NewConsumer(dispatcher *Dispatcher, gate *Gate, backend Backend, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		dispatcher: dispatcher,
		gate:       gate,
		backend:    backend,
		logger:     logger,
	}
}

// HandleDelivery обрабатывает одно сообщение задачи.
//
// Последовательность: захват gate, разбор тела, вызов задачи,
// классификация исхода, отчёт backend'у, ack или reject (без requeue),
// освобождение gate. Паники перехватываются и классифицируются.
func (c *Consumer) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	c.gate.Acquire()
	telemetry.BusySlots.Inc()
	defer func() {
		telemetry.BusySlots.Dec()
		c.gate.Release()
	}()

	start := time.Now()

	msg, outcome := c.process(ctx, d)
	logger := telemetry.WithTaskID(c.logger, msg.ID, msg.Task)
	c.log(logger, outcome, time.Since(start))

	decision := decide(outcome.Kind)

	if err := c.report(ctx, msg, outcome, decision); err != nil {
		telemetry.BackendErrors.Inc()
		logger.Error("failed to report task outcome", "outcome", outcome.Kind.String(), "error", err)
	}

	c.settle(logger, d, decision)

	label := metricTaskLabel(msg, outcome.Kind)
	telemetry.TasksTotal.WithLabelValues(label, outcome.Kind.String()).Inc()
	telemetry.TaskDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

// process разбирает сообщение и вызывает задачу. Всегда возвращает msg.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) (msg *Message, out Outcome) {
	msg = newMessage(d)
	logger := telemetry.WithTaskID(c.logger, msg.ID, msg.Task)
	ctx = telemetry.WithLogger(ctx, logger)

	defer func() {
		if r := recover(); r != nil {
			out = classify(nil, &PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	if err := msg.decode(d.Body); err != nil {
		return msg, classify(nil, err)
	}

	if len(msg.Kwargs) > 0 {
		logger.Warn("keyword arguments are not supported and were ignored", "kwargs", len(msg.Kwargs))
	}

	value, err := c.dispatcher.Dispatch(ctx, msg.Task, msg.Args, msg.Kwargs)
	return msg, classify(value, err)
}

// report отправляет backend'у результат или ошибку.
func (c *Consumer) report(ctx context.Context, msg *Message, out Outcome, decision Decision) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()

	if decision.ReportResult {
		return c.backend.ReportResult(ctx, msg.ID, msg.ReplyTo, msg.CorrelationID, out.Value)
	}
	return c.backend.ReportException(ctx, msg.ID, msg.ReplyTo, msg.CorrelationID, out.Err)
}

// settle подтверждает или отклоняет сообщение без повторной доставки.
func (c *Consumer) settle(logger *slog.Logger, d amqp.Delivery, decision Decision) {
	var err error
	if decision.Ack {
		err = d.Ack(false)
	} else {
		err = d.Reject(false)
	}

	if err != nil {
		telemetry.SettleErrors.Inc()
		logger.Error("failed to settle delivery",
			"delivery_tag", d.DeliveryTag,
			"ack", decision.Ack,
			"error", err,
		)
	}
}

func (c *Consumer) log(logger *slog.Logger, out Outcome, elapsed time.Duration) {
	switch out.Kind {
	case KindSuccess:
		logger.Info("task succeeded", "duration", elapsed, "result", out.Value)
	case KindTaskError:
		attrs := []any{"duration", elapsed, "error", out.Err}
		if pe, ok := out.Err.(*PanicError); ok {
			attrs = append(attrs, "stack", string(pe.Stack))
		}
		logger.Warn("task failed", attrs...)
	case KindDispatchError:
		logger.Error("task dispatch error", "error", out.Err)
	case KindProtocolError:
		logger.Error("malformed task message", "error", out.Err)
	default:
		attrs := []any{"error", out.Err}
		if pe, ok := out.Err.(*PanicError); ok {
			attrs = append(attrs, "stack", string(pe.Stack))
		}
		logger.Error("unexpected error while handling task", attrs...)
	}
}

// metricTaskLabel ограничивает кардинальность метрик: имя задачи из
// сообщения используется только если задача была найдена в реестре.
func metricTaskLabel(msg *Message, k Kind) string {
	if k == KindSuccess || k == KindTaskError {
		return msg.Task
	}
	return "unresolved"
}
