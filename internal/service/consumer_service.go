// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"errors"

	"notetrack-be/internal/pkg/logger"
	"notetrack-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventSink receives events leaving the process, e.g. the NATS JetStream publisher.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process note event topic and forwards every event
// to the external sink. Forwarding failures are logged and acked: events are
// notifications, the audit log is the record of truth.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	sink       EventSink
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	sink EventSink,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		sink:       sink,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error("EventForwarder", "Dropping undecodable event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	cs.logger.Debug("EventForwarder", "Forwarding event", map[string]interface{}{
		"type": event.EventType(),
	})

	if cs.sink == nil {
		return
	}
	if err := cs.sink.Publish(ctx, event); err != nil {
		cs.logger.Warn("EventForwarder", "Failed to forward event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

// FanOutSink forwards each event to every sink, returning the joined failures.
type FanOutSink []EventSink

func (f FanOutSink) Publish(ctx context.Context, event events.Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
