package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewStore is the persistence surface the review aggregator needs
type ReviewStore interface {
	ItemBelongsToShop(ctx context.Context, shopID, itemID int64) (bool, error)
	CreateReview(ctx context.Context, review *models.Review) error
	GetItemReviews(ctx context.Context, shopID, itemID int64) ([]models.Review, error)
	GetShopReviews(ctx context.Context, shopID int64) ([]models.ShopReview, error)
}

// ReviewEvents publishes review events to the analytics stream
type ReviewEvents interface {
	PublishReviewCreated(ctx context.Context, event *models.ReviewCreatedEvent) error
}

// ReviewService creates and lists reviews joined with reviewer and item identity
type ReviewService struct {
	store  ReviewStore
	events ReviewEvents
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store ReviewStore, events ReviewEvents) *ReviewService {
	return &ReviewService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// CreateReviewRequest represents a request to review an item
type CreateReviewRequest struct {
	UserID    int64     `json:"user_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReview persists a review after verifying the item belongs to the
// shop. Rating must be within 1..5. Nothing is written on rejection.
func (s *ReviewService) CreateReview(ctx context.Context, shopID, itemID int64, req *CreateReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.CreateReview")
	defer span.End()

	if req.Rating < 1 || req.Rating > 5 {
		util.ReviewsRejectedTotal.WithLabelValues("bad_rating").Inc()
		return nil, fmt.Errorf("%w: rating must be within 1..5, got %d", ErrValidation, req.Rating)
	}

	belongs, err := s.store.ItemBelongsToShop(ctx, shopID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check item ownership: %w", err)
	}
	if !belongs {
		util.ReviewsRejectedTotal.WithLabelValues("item_not_in_shop").Inc()
		return nil, fmt.Errorf("item %d in shop %d: %w", itemID, shopID, store.ErrNotFound)
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	review := &models.Review{
		UserID:    req.UserID,
		ShopID:    shopID,
		ItemID:    itemID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: createdAt,
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	util.ReviewsCreatedTotal.Inc()
	s.logger.Info("Review created",
		zap.Int64("review_id", review.ID),
		zap.Int64("shop_id", shopID),
		zap.Int64("item_id", itemID),
		zap.Int("rating", req.Rating))

	event := &models.ReviewCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReviewCreated,
			Timestamp: time.Now(),
		},
		ReviewID: review.ID,
		UserID:   review.UserID,
		ShopID:   shopID,
		ItemID:   itemID,
		Rating:   review.Rating,
	}
	if err := s.events.PublishReviewCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReviewCreated event", zap.Error(err))
	}

	return review, nil
}

// ListItemReviews returns the reviews of one item within a shop.
// An empty result is valid.
func (s *ReviewService) ListItemReviews(ctx context.Context, shopID, itemID int64) ([]models.Review, error) {
	return s.store.GetItemReviews(ctx, shopID, itemID)
}

// ListShopReviews returns a shop's reviews with reviewer and item names
// already joined; never one lookup per review
func (s *ReviewService) ListShopReviews(ctx context.Context, shopID int64) ([]models.ShopReview, error) {
	return s.store.GetShopReviews(ctx, shopID)
}
