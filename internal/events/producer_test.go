package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublishEvent(t *testing.T) {
	t.Parallel()
	fw := &fakeWriter{}
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	p := &Producer{w: fw, now: func() time.Time { return at }}

	require.NoError(t, p.PublishEvent(context.Background(), TopicOrders, "order-1", "order_created", map[string]any{"total": 12.5}))
	require.Len(t, fw.msgs, 1)

	m := fw.msgs[0]
	assert.Equal(t, TopicOrders, m.Topic)
	assert.Equal(t, "order-1", string(m.Key))
	assert.Equal(t, "order_created", string(m.Headers[0].Value))

	var env struct {
		Type       string         `json:"type"`
		OccurredAt time.Time      `json:"occurred_at"`
		Data       map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(m.Value, &env))
	assert.Equal(t, "order_created", env.Type)
	assert.True(t, at.Equal(env.OccurredAt))
	assert.Equal(t, 12.5, env.Data["total"])
}

func TestPublishEventErrors(t *testing.T) {
	t.Parallel()
	p := &Producer{w: &fakeWriter{err: errors.New("broker down")}, now: time.Now}
	err := p.PublishEvent(context.Background(), TopicUsers, "k", "user_registered", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	err = p.PublishEvent(context.Background(), TopicUsers, "k", "bad", make(chan int))
	require.Error(t, err)
}
