package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Task — вызов задачи.
type Task struct {
	// ID — идентификатор задачи. Пустой — будет сгенерирован.
	ID string

	// Name — имя вида key#operation.
	Name string

	// Args — позиционные аргументы.
	Args []any

	// Kwargs — именованные аргументы. Воркер их не передаёт в вызов.
	Kwargs map[string]any

	// ReplyTo — очередь для результата. Пустая — результат не нужен.
	ReplyTo string
}

type embed struct {
	Callbacks any `json:"callbacks"`
	Errbacks  any `json:"errbacks"`
	Chain     any `json:"chain"`
	Chord     any `json:"chord"`
}

// NewTaskMessage собирает AMQP сообщение задачи. Возвращает сообщение и id задачи.
func NewTaskMessage(task Task) (amqp.Publishing, string, error) {
	id := task.ID
	if id == "" {
		id = uuid.NewString()
	}

	args := task.Args
	if args == nil {
		args = []any{}
	}
	kwargs := task.Kwargs
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	body, err := json.Marshal([]any{args, kwargs, embed{}})
	if err != nil {
		return amqp.Publishing{}, "", fmt.Errorf("marshal task body: %w", err)
	}

	return amqp.Publishing{
		Headers: amqp.Table{
			"id":   id,
			"task": task.Name,
			"lang": "go",
		},
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		CorrelationId:   id,
		ReplyTo:         task.ReplyTo,
		MessageId:       id,
		Timestamp:       time.Now(),
		Body:            body,
	}, id, nil
}
