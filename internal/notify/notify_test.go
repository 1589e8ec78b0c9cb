package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaker/internal/logger"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Notify(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestNewEventStampsID(t *testing.T) {
	a := NewEvent(KindMatch, 1, 2, time.Now())
	b := NewEvent(KindMatch, 1, 2, time.Now())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, time.UTC, a.CreatedAt.Location())
}

func TestDispatcherDelivers(t *testing.T) {
	sink := &recordingSink{}
	d, err := NewDispatcher(sink, Options{PoolSize: 16}, logger.Discard(), nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Notify(context.Background(), NewEvent(KindLiked, uint64(i), 99, time.Now())))
	}
	require.NoError(t, d.Close(5*time.Second))

	assert.Equal(t, 10, sink.count())
}

func TestDispatcherSwallowsSinkFailures(t *testing.T) {
	sink := &recordingSink{err: errors.New("recipient unreachable")}
	d, err := NewDispatcher(sink, Options{PoolSize: 1}, logger.Discard(), nil)
	require.NoError(t, err)

	defer d.Close(time.Second)

	// the breaker opens after five failures, later events never reach the sink
	for i := 0; i < 8; i++ {
		assert.NotPanics(t, func() { d.deliver(NewEvent(KindMatch, 1, 2, time.Now())) })
	}

	assert.Equal(t, 5, sink.count())
	assert.Equal(t, gobreaker.StateOpen, d.breaker.State())
}

func TestKafkaNotifierKeysByRecipient(t *testing.T) {
	w := &fakeWriter{}
	n := &KafkaNotifier{w: w}

	ev := NewEvent(KindMatch, 42, 7, time.Now())
	require.NoError(t, n.Notify(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, KindMatch, got.Kind)
	assert.EqualValues(t, 7, got.Peer)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), NewEvent(KindLiked, 5, 6, time.Now())))
	assert.Contains(t, buf.String(), "kind=liked")
	assert.Contains(t, buf.String(), "recipient=5")
}
