package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/celery-worker/internal/backend"
)

func TestNewTaskMessage(t *testing.T) {
	msg, id, err := NewTaskMessage(Task{
		Name:    "Greeter#sayHello",
		Args:    []any{"world"},
		ReplyTo: "reply-q",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, id)
	assert.Equal(t, id, msg.Headers["id"])
	assert.Equal(t, "Greeter#sayHello", msg.Headers["task"])
	assert.Equal(t, id, msg.CorrelationId)
	assert.Equal(t, "reply-q", msg.ReplyTo)
	assert.Equal(t, "utf-8", msg.ContentEncoding)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var body []json.RawMessage
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	require.Len(t, body, 3)
	assert.JSONEq(t, `["world"]`, string(body[0]))
	assert.JSONEq(t, `{}`, string(body[1]))
	assert.JSONEq(t, `{"callbacks":null,"errbacks":null,"chain":null,"chord":null}`, string(body[2]))
}

func TestNewTaskMessage_KeepsID(t *testing.T) {
	_, id, err := NewTaskMessage(Task{ID: "fixed", Name: "Math#add"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)
}

func TestNewTaskMessage_EmptyArgs(t *testing.T) {
	msg, _, err := NewTaskMessage(Task{Name: "Greeter#sayHello"})
	require.NoError(t, err)

	var body []json.RawMessage
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.JSONEq(t, `[]`, string(body[0]))
}

func TestNewTaskMessage_Unencodable(t *testing.T) {
	_, _, err := NewTaskMessage(Task{Name: "x#y", Args: []any{make(chan int)}})
	assert.Error(t, err)
}

func reply(t *testing.T, correlationID string, meta *backend.ResultMeta) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(meta)
	require.NoError(t, err)
	return amqp.Delivery{CorrelationId: correlationID, Body: body}
}

func TestAwaitReply(t *testing.T) {
	replies := make(chan amqp.Delivery, 2)
	replies <- reply(t, "other", backend.NewSuccess("other", 1))
	replies <- reply(t, "mine", backend.NewSuccess("mine", 3))

	meta, err := awaitReply(context.Background(), replies, "mine")
	require.NoError(t, err)
	assert.Equal(t, "mine", meta.TaskID)

	var n int
	require.NoError(t, meta.Decode(&n))
	assert.Equal(t, 3, n)
}

func TestAwaitReply_Failure(t *testing.T) {
	replies := make(chan amqp.Delivery, 1)
	replies <- reply(t, "t", backend.NewFailure("t", errors.New("boom")))

	meta, err := awaitReply(context.Background(), replies, "t")
	require.NoError(t, err)

	var remote *backend.RemoteError
	require.ErrorAs(t, meta.Err(), &remote)
	assert.Equal(t, []string{"boom"}, remote.Info.ExcMessage)
}

func TestAwaitReply_Closed(t *testing.T) {
	replies := make(chan amqp.Delivery)
	close(replies)

	_, err := awaitReply(context.Background(), replies, "t")
	assert.ErrorIs(t, err, ErrReplyClosed)
}

func TestAwaitReply_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := awaitReply(ctx, make(chan amqp.Delivery), "t")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwaitReply_BadBody(t *testing.T) {
	replies := make(chan amqp.Delivery, 1)
	replies <- amqp.Delivery{CorrelationId: "t", Body: []byte("not json")}

	_, err := awaitReply(context.Background(), replies, "t")
	assert.Error(t, err)
}
