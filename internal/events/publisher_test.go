package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_NotifyImported(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, DefaultExchange)

	ev := core.ImportEvent{
		EventID:       uuid.New(),
		CampaignID:    uuid.New(),
		InsertedCount: 12,
		ImportedBy:    "ops@example.com",
		ImportedAt:    "2026-01-02T03:04:05Z",
	}
	require.NoError(t, p.NotifyImported(context.Background(), ev))
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, RoutingKeyImported, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, ev.EventID.String(), got.msg.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, ev.CampaignID.String(), body["campaign_id"])
	assert.Equal(t, float64(12), body["inserted_count"])
	assert.Equal(t, "ops@example.com", body["imported_by"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel/connection is not open")}
	p := newPublisher(ch, "ex.test")

	err := p.NotifyImported(context.Background(), core.ImportEvent{EventID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), RoutingKeyImported)
}
