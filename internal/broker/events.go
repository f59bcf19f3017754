package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"marketplace-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events to the analytics stream
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes an OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderStatusChanged publishes an OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishReviewCreated publishes a ReviewCreated event
func (ep *EventPublisher) PublishReviewCreated(ctx context.Context, event *models.ReviewCreatedEvent) error {
	key := fmt.Sprintf("shop-%d", event.ShopID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes consumed events to registered callbacks
type EventHandler struct {
	onReviewCreated func(context.Context, *models.ReviewCreatedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnReviewCreated registers a handler for ReviewCreated events
func (eh *EventHandler) OnReviewCreated(handler func(context.Context, *models.ReviewCreatedEvent) error) {
	eh.onReviewCreated = handler
}

// HandleMessage routes messages to the appropriate handler
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeReviewCreated:
		if eh.onReviewCreated != nil {
			var event models.ReviewCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReviewCreated event: %w", err)
			}
			return eh.onReviewCreated(ctx, &event)
		}

	default:
		// Order events share the topic; only review events feed the worker.
		log.Printf("Skipping event type: %s", baseEvent.EventType)
	}

	return nil
}
