package worker

import (
	"context"
	"fmt"
	"log"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"
)

// RatingStore is the persistence surface the rating worker needs
type RatingStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
	RecomputeItemRating(ctx context.Context, itemID int64) error
	RecomputeShopRating(ctx context.Context, shopID int64) error
}

// RatingWorker consumes ReviewCreated events and refreshes the reviewed
// item's average rating and the shop's avg_rating, off the request path.
type RatingWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        RatingStore
}

// NewRatingWorker creates a new rating worker
func NewRatingWorker(consumer *broker.Consumer, store RatingStore) *RatingWorker {
	w := &RatingWorker{
		consumer: consumer,
		store:    store,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnReviewCreated(w.handleReviewCreated)
	w.eventHandler = eventHandler

	return w
}

// handleReviewCreated recomputes rating aggregates for one review event.
// Processed event ids are recorded so redelivered messages are no-ops.
func (w *RatingWorker) handleReviewCreated(ctx context.Context, event *models.ReviewCreatedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event %s: %w", event.EventID, err)
	}
	if processed {
		log.Printf("Skipping already processed event: %s", event.EventID)
		return nil
	}

	if err := w.store.RecomputeItemRating(ctx, event.ItemID); err != nil {
		return fmt.Errorf("failed to recompute rating for item %d: %w", event.ItemID, err)
	}
	if err := w.store.RecomputeShopRating(ctx, event.ShopID); err != nil {
		return fmt.Errorf("failed to recompute rating for shop %d: %w", event.ShopID, err)
	}

	util.RatingRecomputesTotal.Inc()

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// Start starts the worker
func (w *RatingWorker) Start(ctx context.Context) error {
	log.Println("Starting rating worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *RatingWorker) Stop() error {
	log.Println("Stopping rating worker...")
	return w.consumer.Close()
}
