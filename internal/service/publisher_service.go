package service

import (
	"context"

	"notetrack-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService puts domain events on the in-process bus. Callers publish after commit.
type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (p *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.EventType())

	return p.publisher.Publish(p.topicName, msg)
}

// nopPublisher is used when no bus is configured (CLI tools).
type nopPublisher struct{}

func NewNopPublisherService() IPublisherService {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, events.Event) error {
	return nil
}
