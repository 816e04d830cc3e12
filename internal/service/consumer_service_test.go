package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"notetrack-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu       sync.Mutex
	received []events.Event
	fail     bool
}

func (s *captureSink) Publish(_ context.Context, e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, e)
	if s.fail {
		return errors.New("nats: no responders available")
	}
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func newBus(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestConsumerService_ForwardsPublishedEvents(t *testing.T) {
	bus := newBus(t)
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumerService(bus, "note-events", sink, nopLog())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("note-events", bus)
	occurred := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, publisher.Publish(ctx, events.BaseEvent{
		Type:       events.NoteStageChanged,
		Data:       map[string]interface{}{"title": "Plan"},
		OccurredAt: occurred,
	}))

	require.Eventually(t, func() bool { return sink.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	got := sink.received[0]
	sink.mu.Unlock()
	assert.Equal(t, events.NoteStageChanged, got.EventType())
	assert.Equal(t, "Plan", got.Payload()["title"])
	assert.True(t, got.Timestamp().Equal(occurred))
}

func TestConsumerService_SurvivesBadMessagesAndSinkErrors(t *testing.T) {
	bus := newBus(t)
	sink := &captureSink{fail: true}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumerService(bus, "note-events", sink, nopLog())
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, bus.Publish("note-events", message.NewMessage(watermill.NewUUID(), []byte("not json"))))

	publisher := NewPublisherService("note-events", bus)
	for i := 0; i < 2; i++ {
		require.NoError(t, publisher.Publish(ctx, events.BaseEvent{Type: events.NoteCreated}))
	}

	// Failed forwards are acked, so later messages still arrive.
	require.Eventually(t, func() bool { return sink.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestConsumerService_WithoutSink(t *testing.T) {
	bus := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumerService(bus, "note-events", nil, nopLog())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("note-events", bus)
	assert.NoError(t, publisher.Publish(ctx, events.BaseEvent{Type: events.NoteDeleted}))
}

func TestFanOutSink_ReachesEverySink(t *testing.T) {
	healthy, broken := &captureSink{}, &captureSink{fail: true}
	sink := FanOutSink{broken, healthy}

	err := sink.Publish(context.Background(), events.BaseEvent{Type: events.NoteArchived})
	assert.ErrorContains(t, err, "no responders")
	assert.Equal(t, 1, broken.count())
	assert.Equal(t, 1, healthy.count())

	assert.NoError(t, FanOutSink{}.Publish(context.Background(), events.BaseEvent{Type: events.NoteArchived}))
}
