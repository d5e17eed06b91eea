package worker

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/celery-worker/internal/client"
	"github.com/shaiso/celery-worker/internal/registry"
	"github.com/shaiso/celery-worker/internal/tasks"
)

// fromPublishing превращает исходящее сообщение клиента во входящую доставку.
func fromPublishing(ack amqp.Acknowledger, tag uint64, msg amqp.Publishing) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger:    ack,
		DeliveryTag:     tag,
		Headers:         msg.Headers,
		ContentType:     msg.ContentType,
		ContentEncoding: msg.ContentEncoding,
		CorrelationId:   msg.CorrelationId,
		ReplyTo:         msg.ReplyTo,
		Body:            msg.Body,
	}
}

func TestRoundTrip_ClientMessage(t *testing.T) {
	reg := registry.New()
	require.NoError(t, tasks.Register(reg))

	backend := &fakeBackend{}
	c := NewConsumer(NewDispatcher(reg), NewGate(), backend, discardLogger())

	cases := []struct {
		task client.Task
		want any
	}{
		{client.Task{Name: "Greeter#sayHello", Args: []any{"world"}, ReplyTo: "r"}, "Hello world"},
		{client.Task{Name: "Math#add", Args: []any{1, 2}, ReplyTo: "r"}, float64(3)},
		{client.Task{Name: "Transform#echo", Args: []any{"x"}, Kwargs: map[string]any{"ignored": true}}, "x"},
	}

	for i, tc := range cases {
		t.Run(tc.task.Name, func(t *testing.T) {
			msg, id, err := client.NewTaskMessage(tc.task)
			require.NoError(t, err)

			ack := &fakeAck{}
			c.HandleDelivery(context.Background(), fromPublishing(ack, uint64(i+1), msg))

			assert.Equal(t, []uint64{uint64(i + 1)}, ack.acks)

			reports := backend.all()
			require.Len(t, reports, i+1)
			r := reports[i]
			assert.True(t, r.Success)
			assert.Equal(t, tc.want, r.Value)
			assert.Equal(t, id, r.TaskID)
			assert.Equal(t, id, r.CorrelationID)
			assert.Equal(t, tc.task.ReplyTo, r.ReplyTo)
		})
	}
}
