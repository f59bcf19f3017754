package store

import (
	"context"

	"marketplace-service/internal/models"
)

// CreateReview inserts a new review
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (user_id, shop_id, item_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return s.db.GetContext(ctx, &review.ID, query,
		review.UserID, review.ShopID, review.ItemID, review.Rating, review.Comment, review.CreatedAt)
}

// GetItemReviews retrieves the reviews of one item within a shop
func (s *Store) GetItemReviews(ctx context.Context, shopID, itemID int64) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE shop_id = $1 AND item_id = $2 ORDER BY created_at DESC",
		shopID, itemID)
	return reviews, err
}

// GetShopReviews retrieves a shop's reviews with reviewer and item names
// joined in one query
func (s *Store) GetShopReviews(ctx context.Context, shopID int64) ([]models.ShopReview, error) {
	var reviews []models.ShopReview
	err := s.db.SelectContext(ctx, &reviews, `
		SELECT r.id, r.user_id, r.shop_id, r.item_id, r.rating, r.comment, r.created_at,
		       u.name AS reviewer_name, i.name AS item_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN items i ON i.id = r.item_id
		WHERE r.shop_id = $1
		ORDER BY r.created_at DESC`, shopID)
	return reviews, err
}

// RecomputeItemRating refreshes an item's average rating and rating count
// from its reviews in a single statement
func (s *Store) RecomputeItemRating(ctx context.Context, itemID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE items SET
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE item_id = $1), 0),
			num_ratings = (SELECT COUNT(*) FROM reviews WHERE item_id = $1)
		WHERE id = $1`, itemID)
	return err
}

// RecomputeShopRating refreshes a shop's average rating from all of its reviews
func (s *Store) RecomputeShopRating(ctx context.Context, shopID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE shops SET
			avg_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE shop_id = $1), 0)
		WHERE id = $1`, shopID)
	return err
}

// IsEventProcessed checks if an event has already been consumed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed records a consumed event
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
