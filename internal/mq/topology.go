package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue — очередь задач celery по умолчанию.
const DefaultQueue = "celery"

// Topology описывает объекты брокера, которые нужны воркеру.
type Topology struct {
	// Queue — очередь задач.
	Queue string

	// ResultExchange — обменник для результатов rpc backend'а.
	// Пустая строка — default exchange, объявлять нечего.
	ResultExchange string
}

// SetupTopology объявляет очередь задач и обменник результатов.
func SetupTopology(ctx context.Context, conn *Connection, t Topology) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := DeclareResultExchange(ch, t.ResultExchange); err != nil {
			return err
		}
		return DeclareTaskQueue(ch, t.Queue)
	})
}

// DeclareTaskQueue объявляет durable очередь задач.
// Объявление идемпотентно, каждый слот делает его на своём канале.
func DeclareTaskQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return nil
}

// ReplyChannel — часть *amqp.Channel, нужная для обменника результатов и reply-очереди.
type ReplyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// DeclareResultExchange объявляет durable direct обменник результатов.
// Пустое имя — default exchange, объявлять нечего.
func DeclareResultExchange(ch ReplyChannel, exchange string) error {
	if exchange == "" {
		return nil
	}

	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// DeclareReplyQueue объявляет эксклюзивную auto-delete очередь для ответов.
// Пустое имя — имя сгенерирует брокер.
//
// Если задан exchange, очередь привязывается к нему с routing key = имя
// очереди: rpc backend публикует результат туда с routing key = reply_to.
// В default exchange очередь доступна по имени без привязки.
func DeclareReplyQueue(ch ReplyChannel, name, exchange string) (string, error) {
	q, err := ch.QueueDeclare(
		name,  // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", fmt.Errorf("declare reply queue: %w", err)
	}

	if exchange == "" {
		return q.Name, nil
	}

	if err := DeclareResultExchange(ch, exchange); err != nil {
		return "", err
	}
	if err := ch.QueueBind(q.Name, q.Name, exchange, false, nil); err != nil {
		return "", fmt.Errorf("bind reply queue %s to %s: %w", q.Name, exchange, err)
	}
	return q.Name, nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo(t Topology) string {
	exchange := t.ResultExchange
	if exchange == "" {
		exchange = "(default)"
	}
	return fmt.Sprintf("queue=%s durable; results via exchange %s, routing key = reply_to", t.Queue, exchange)
}
