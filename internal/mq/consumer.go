package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeliveryHandler обрабатывает одно сообщение.
//
// Handler сам отвечает за ack/reject: Consumer не подтверждает сообщения.
type DeliveryHandler func(ctx context.Context, d amqp.Delivery)

// Consumer потребляет сообщения из очереди на собственном канале.
//
// Сообщения обрабатываются последовательно в горутине Start:
// следующая доставка не читается, пока handler не вернул управление.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	queue    string
	tag      string
	handler  DeliveryHandler
	prefetch int

	mu         sync.Mutex
	channel    *amqp.Channel
	cancelFunc context.CancelFunc
}

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	// Queue — имя очереди.
	Queue string

	// Tag — consumer tag. Пустой — сгенерирует брокер.
	Tag string

	// Handler — обработчик сообщений.
	Handler DeliveryHandler

	// Prefetch — количество сообщений для предварительной загрузки.
	Prefetch int
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		conn:     conn,
		logger:   logger,
		queue:    cfg.Queue,
		tag:      cfg.Tag,
		handler:  cfg.Handler,
		prefetch: prefetch,
	}
}

// Start запускает потребление сообщений и блокируется до отмены ctx или Stop.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()

	defer c.closeChannel()

	return c.consume(ctx)
}

// consume — основной цикл потребления.
func (c *Consumer) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Подписываемся на уведомление до попытки, чтобы не пропустить reconnect
		reconnected := c.conn.Reconnected()

		deliveries, err := c.setupConsume()
		if err != nil {
			c.logger.Error("failed to setup consume", "queue", c.queue, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-reconnected:
				c.logger.Info("reconnected, restarting consumer", "queue", c.queue)
				continue
			}
		}

		c.logger.Info("consumer started", "queue", c.queue, "prefetch", c.prefetch)

		if err := c.processDeliveries(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("deliveries channel closed, reconnecting", "queue", c.queue)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-reconnected:
				continue
			}
		}
	}
}

// setupConsume открывает канал слота и начинает потребление.
func (c *Consumer) setupConsume() (<-chan amqp.Delivery, error) {
	c.closeChannel()

	ch, err := c.conn.OpenChannel()
	if err != nil {
		return nil, err
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	if err := DeclareTaskQueue(ch, c.queue); err != nil {
		ch.Close()
		return nil, err
	}

	deliveries, err := ch.Consume(
		c.queue, // queue
		c.tag,   // consumer tag
		false,   // auto-ack (ack делает handler)
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}

	c.mu.Lock()
	c.channel = ch
	c.mu.Unlock()

	return deliveries, nil
}

// processDeliveries передаёт сообщения handler'у по одному.
//
// Handler получает контекст без отмены: Stop не прерывает начатую задачу.
// Доставка, прочитанная после остановки, не обрабатывается и вернётся
// в очередь при закрытии канала.
func (c *Consumer) processDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			c.handler(handlerCtx, d)
		}
	}
}

// Stop прекращает приём новых сообщений.
//
// Канал остаётся открытым, пока выполняющийся handler не завершится,
// чтобы его ack дошёл до брокера. Канал закрывается при выходе из Start.
func (c *Consumer) Stop() {
	c.mu.Lock()
	ch := c.channel
	cancel := c.cancelFunc
	c.mu.Unlock()

	if ch != nil && c.tag != "" {
		if err := ch.Cancel(c.tag, false); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.logger.Warn("failed to cancel consumer", "queue", c.queue, "tag", c.tag, "error", err)
		}
	}

	if cancel != nil {
		cancel()
	}
}

func (c *Consumer) closeChannel() {
	c.mu.Lock()
	ch := c.channel
	c.channel = nil
	c.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.logger.Debug("close consumer channel", "queue", c.queue, "error", err)
		}
	}
}
