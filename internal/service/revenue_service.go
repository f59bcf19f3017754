package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// RevenueStore sums persisted order totals for trailing windows
type RevenueStore interface {
	SumOrderTotals(ctx context.Context, shopID int64, since time.Time) (int64, error)
}

// RevenueCache caches computed stats per shop. Get returns (nil, nil) on a
// cache miss.
type RevenueCache interface {
	GetRevenueStats(ctx context.Context, shopID int64) (*models.RevenueStats, error)
	SetRevenueStats(ctx context.Context, shopID int64, stats *models.RevenueStats) error
}

// RevenueService computes trailing-window revenue sums per shop
type RevenueService struct {
	store  RevenueStore
	cache  RevenueCache
	now    func() time.Time
	logger *zap.Logger
}

// NewRevenueService creates a new revenue service
func NewRevenueService(store RevenueStore, cache RevenueCache) *RevenueService {
	return &RevenueService{
		store:  store,
		cache:  cache,
		now:    time.Now,
		logger: util.GetLogger(),
	}
}

// GetRevenueStats returns {daily, weekly, monthly} sums of order totals for
// a shop. The daily window starts at the beginning of the current UTC
// calendar day; weekly and monthly are trailing 7 and 30 days. A shop with
// no orders gets zeros, never an error. Cache failures fall through to the
// database.
func (s *RevenueService) GetRevenueStats(ctx context.Context, shopID int64) (*models.RevenueStats, error) {
	ctx, span := util.StartSpan(ctx, "RevenueService.GetRevenueStats")
	defer span.End()

	cached, err := s.cache.GetRevenueStats(ctx, shopID)
	if err != nil {
		s.logger.Warn("Revenue cache read failed", zap.Int64("shop_id", shopID), zap.Error(err))
	}
	if cached != nil {
		util.RevenueCacheHits.Inc()
		return cached, nil
	}
	util.RevenueCacheMisses.Inc()

	start := time.Now()
	defer func() {
		util.RevenueQueryLatency.Observe(time.Since(start).Seconds())
	}()

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	daily, err := s.store.SumOrderTotals(ctx, shopID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum daily revenue: %w", err)
	}

	weekly, err := s.store.SumOrderTotals(ctx, shopID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly revenue: %w", err)
	}

	monthly, err := s.store.SumOrderTotals(ctx, shopID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}

	stats := &models.RevenueStats{
		Daily:   daily,
		Weekly:  weekly,
		Monthly: monthly,
	}

	if err := s.cache.SetRevenueStats(ctx, shopID, stats); err != nil {
		s.logger.Warn("Revenue cache write failed", zap.Int64("shop_id", shopID), zap.Error(err))
	}

	return stats, nil
}
