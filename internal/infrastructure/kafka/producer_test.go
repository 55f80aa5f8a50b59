package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestViewPublisherWritesEvent(t *testing.T) {
	w := &fakeWriter{}
	p := newViewPublisher(w, "till-7", logger.NewSlogLoggerWithWriter(io.Discard, "text", "info"))
	p.now = func() time.Time { return time.Unix(0, 42) }

	view := domain.NewView(domain.DefaultCatalog(), nil, "Cart cleared!", decimal.Zero)
	p.Render(context.Background(), view)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "till-7", string(msg.Key))

	var event struct {
		EventID   string `json:"event_id"`
		Session   string `json:"session"`
		EmittedAt int64  `json:"emitted_at"`
		View      struct {
			Message  string            `json:"message"`
			Products []json.RawMessage `json:"products"`
		} `json:"view"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	_, err := uuid.Parse(event.EventID)
	require.NoError(t, err)
	assert.Equal(t, "till-7", event.Session)
	assert.Equal(t, int64(42), event.EmittedAt)
	assert.Equal(t, "Cart cleared!", event.View.Message)
	assert.Len(t, event.View.Products, 3)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, event.EventID, string(msg.Headers[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestViewPublisherSwallowsBrokerErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker not available")}
	p := newViewPublisher(w, "till-7", logger.NewSlogLoggerWithWriter(io.Discard, "text", "info"))

	assert.NotPanics(t, func() {
		p.Render(context.Background(), domain.NewView(nil, nil, "", decimal.Zero))
	})
	assert.Empty(t, w.messages)
}
