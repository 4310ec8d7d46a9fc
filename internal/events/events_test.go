package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestNew(t *testing.T) {
	e, err := New(CheckoutCompleted, "chk-1", map[string]int{"items": 2})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, CheckoutCompleted, e.Type)
	assert.Equal(t, "chk-1", e.AggregateID)
	assert.False(t, e.OccurredAt.IsZero())
	assert.JSONEq(t, `{"items":2}`, string(e.Payload))
}

func TestNew_UnencodablePayload(t *testing.T) {
	_, err := New(CheckoutCompleted, "chk-1", make(chan int))
	assert.Error(t, err)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := &KafkaPublisher{writer: w}

	e, err := New(ListingPublished, "42", map[string]string{"title": "Bike"})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "listing.published", string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.JSONEq(t, `{"title":"Bike"}`, string(decoded.Payload))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaPublisher_FlushesPromptly(t *testing.T) {
	p := NewKafkaPublisher("localhost:9092")
	t.Cleanup(func() { _ = p.Close() })

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Positive(t, w.BatchTimeout)
	assert.Equal(t, Topic, w.Topic)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &mockWriter{err: errors.New("broker down")}}

	e, err := New(ListingsBulkUpdated, "1", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), e)
	assert.ErrorContains(t, err, "broker down")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	e, err := New(CheckoutCompleted, "chk-9", map[string]string{"total": "25"})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), e))

	assert.Contains(t, buf.String(), `"event_type":"checkout.completed"`)
	assert.Contains(t, buf.String(), `"aggregate_id":"chk-9"`)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	e, _ := New(CheckoutCompleted, "a", nil)

	require.NoError(t, r.Publish(context.Background(), e))
	assert.Len(t, r.Events(), 1)

	r.Err = errors.New("nope")
	assert.Error(t, r.Publish(context.Background(), e))
	assert.Len(t, r.Events(), 1)
}
