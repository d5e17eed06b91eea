package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher публикует сообщение в брокер. Реализуется *mq.Publisher.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error
}

// RPCBackend отправляет результат в очередь reply_to отправителя.
//
// Сообщение публикуется в exchange (пустой — default exchange)
// с routing key = reply_to и исходным correlation_id. Если reply_to
// пуст, отправитель результат не ждёт и публиковать нечего.
type RPCBackend struct {
	publisher Publisher
	exchange  string
	logger    *slog.Logger
}

// NewRPCBackend создаёт RPCBackend.
func NewRPCBackend(publisher Publisher, exchange string, logger *slog.Logger) *RPCBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &RPCBackend{
		publisher: publisher,
		exchange:  exchange,
		logger:    logger,
	}
}

// ReportResult публикует SUCCESS.
func (b *RPCBackend) ReportResult(ctx context.Context, taskID, replyTo, correlationID string, value any) error {
	return b.publish(ctx, replyTo, correlationID, NewSuccess(taskID, value))
}

// ReportException публикует FAILURE.
func (b *RPCBackend) ReportException(ctx context.Context, taskID, replyTo, correlationID string, err error) error {
	return b.publish(ctx, replyTo, correlationID, NewFailure(taskID, err))
}

func (b *RPCBackend) publish(ctx context.Context, replyTo, correlationID string, meta *ResultMeta) error {
	if replyTo == "" {
		b.logger.Debug("no reply_to, result not published",
			"task_id", meta.TaskID,
			"status", meta.Status,
		)
		return nil
	}

	body, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	err = b.publisher.Publish(ctx, b.exchange, replyTo, amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		CorrelationId:   correlationID,
		DeliveryMode:    amqp.Transient,
		Timestamp:       meta.DateDone,
		Body:            body,
	})
	if err != nil {
		return fmt.Errorf("publish result of %s: %w", meta.TaskID, err)
	}
	return nil
}

// Close ничего не делает: соединением владеет вызывающий.
func (b *RPCBackend) Close() error {
	return nil
}
