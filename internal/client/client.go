package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/celery-worker/internal/backend"
	"github.com/shaiso/celery-worker/internal/mq"
)

// ErrReplyClosed — reply-очередь закрылась до получения результата.
var ErrReplyClosed = errors.New("reply channel closed before result arrived")

// Client публикует задачи в очередь воркера.
type Client struct {
	conn           *mq.Connection
	publisher      backend.Publisher
	queue          string
	resultExchange string
	logger         *slog.Logger
}

// New создаёт Client. Задачи публикуются в default exchange с routing key = queue.
// resultExchange должен совпадать с CELERY_RESULT_EXCHANGE воркера: к нему
// привязывается reply-очередь Call. Пустой — default exchange.
func New(conn *mq.Connection, queue, resultExchange string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if queue == "" {
		queue = mq.DefaultQueue
	}
	return &Client{
		conn:           conn,
		publisher:      mq.NewPublisher(conn, logger),
		queue:          queue,
		resultExchange: resultExchange,
		logger:         logger,
	}
}

// Send публикует задачу и возвращает её id, не дожидаясь результата.
func (c *Client) Send(ctx context.Context, task Task) (string, error) {
	msg, id, err := NewTaskMessage(task)
	if err != nil {
		return "", err
	}

	if err := c.publisher.Publish(ctx, "", c.queue, msg); err != nil {
		return "", err
	}

	c.logger.Debug("task sent", "task_id", id, "task", task.Name, "queue", c.queue)
	return id, nil
}

// Call публикует задачу и ждёт её результат через rpc backend воркера.
func (c *Client) Call(ctx context.Context, task Task) (*backend.ResultMeta, error) {
	ch, err := c.conn.OpenChannel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	replyQueue, err := mq.DeclareReplyQueue(ch, "", c.resultExchange)
	if err != nil {
		return nil, err
	}

	replies, err := ch.Consume(
		replyQueue, // queue
		"",         // consumer tag
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume replies: %w", err)
	}

	task.ReplyTo = replyQueue
	id, err := c.Send(ctx, task)
	if err != nil {
		return nil, err
	}

	return awaitReply(ctx, replies, id)
}

// awaitReply ждёт ответ с correlation_id == id. Чужие ответы пропускаются.
func awaitReply(ctx context.Context, replies <-chan amqp.Delivery, id string) (*backend.ResultMeta, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case d, ok := <-replies:
			if !ok {
				return nil, ErrReplyClosed
			}
			if d.CorrelationId != id {
				continue
			}

			var meta backend.ResultMeta
			if err := json.Unmarshal(d.Body, &meta); err != nil {
				return nil, fmt.Errorf("decode reply for %s: %w", id, err)
			}
			return &meta, nil
		}
	}
}
