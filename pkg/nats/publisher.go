package nats

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"notetrack-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "NOTE_EVENTS"
	SubjectPrefix = "notetrack."

	// JetStream drops a repeated Nats-Msg-Id inside this window.
	dedupWindow = 2 * time.Minute
)

// Publisher forwards note events to JetStream so other services can react to them.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects and makes sure the NOTE_EVENTS stream exists.
func NewPublisher(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("notetrack-be"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{SubjectPrefix + ">"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: dedupWindow,
	})
	if err != nil {
		// Stream may already exist with another config, or NATS is still starting.
		log.Printf("Warn: Failed to ensure stream '%s': %v", StreamName, err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Subject returns the subject an event type is published on, e.g. notetrack.NOTE_CREATED.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// MessageID identifies an event for JetStream de-duplication: type, subject entity and time.
func MessageID(event events.Event) string {
	id := event.EventType()
	for _, key := range []string{"note_id", "stage_id"} {
		if v, ok := event.Payload()[key]; ok && v != nil {
			id += ":" + fmt.Sprint(v)
			break
		}
	}
	return id + ":" + strconv.FormatInt(event.Timestamp().UnixNano(), 10)
}

// Publish sends the {type, data, occurred_at} envelope to notetrack.<TYPE>.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := events.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := Subject(event.EventType())
	if _, err = p.js.Publish(ctx, subject, data, jetstream.WithMsgID(MessageID(event))); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}

	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
