package mq

import (
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type binding struct {
	queue    string
	key      string
	exchange string
}

// fakeChannel записывает объявления и привязки.
type fakeChannel struct {
	exchanges []string
	queues    []string
	bindings  []binding
	bindErr   error
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.exchanges = append(c.exchanges, name+":"+kind)
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if name == "" {
		name = "amq.gen-reply"
	}
	c.queues = append(c.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	c.bindings = append(c.bindings, binding{queue: name, key: key, exchange: exchange})
	return c.bindErr
}

func TestDeclareReplyQueue_DefaultExchange(t *testing.T) {
	ch := &fakeChannel{}

	name, err := DeclareReplyQueue(ch, "", "")
	require.NoError(t, err)

	assert.Equal(t, "amq.gen-reply", name)
	assert.Empty(t, ch.exchanges)
	assert.Empty(t, ch.bindings)
}

func TestDeclareReplyQueue_BoundToResultExchange(t *testing.T) {
	ch := &fakeChannel{}

	name, err := DeclareReplyQueue(ch, "", "celery-results")
	require.NoError(t, err)

	assert.Equal(t, []string{"celery-results:direct"}, ch.exchanges)
	// rpc backend публикует с routing key = reply_to = имя очереди
	assert.Equal(t, []binding{{queue: name, key: name, exchange: "celery-results"}}, ch.bindings)
}

func TestDeclareReplyQueue_BindError(t *testing.T) {
	ch := &fakeChannel{bindErr: errors.New("NOT_FOUND")}

	_, err := DeclareReplyQueue(ch, "reply", "celery-results")
	assert.ErrorContains(t, err, "bind reply queue reply to celery-results")
}

func TestTopologyInfo(t *testing.T) {
	assert.Contains(t, TopologyInfo(Topology{Queue: "celery"}), "(default)")
	assert.Contains(t, TopologyInfo(Topology{Queue: "celery", ResultExchange: "results"}), "exchange results")
}
