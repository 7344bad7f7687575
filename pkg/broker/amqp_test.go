package broker

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	published  []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+"/"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherDeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}

	_, err := newPublisher(ch, "unipool.events")
	require.NoError(t, err)
	assert.Equal(t, []string{"unipool.events/topic"}, ch.declared)
}

func TestPublisherDeclareFailureClosesChannel(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}

	_, err := newPublisher(ch, "unipool.events")
	assert.Error(t, err)
	assert.True(t, ch.closed)
}

func TestPublisherPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "unipool.events")
	require.NoError(t, err)

	err = p.Publish(context.Background(), "booking:b1", map[string]string{"event": "booking.created"})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "unipool.events", got.exchange)
	assert.Equal(t, "booking:b1", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.JSONEq(t, `{"event":"booking.created"}`, string(got.msg.Body))
}

func TestPublisherWrapsPublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	p, err := newPublisher(ch, "unipool.events")
	require.NoError(t, err)

	err = p.Publish(context.Background(), "ride:r1", struct{}{})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}
