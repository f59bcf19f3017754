package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRevenueStore struct {
	sums map[time.Time]int64
	seen []time.Time
}

func (m *mockRevenueStore) SumOrderTotals(ctx context.Context, shopID int64, since time.Time) (int64, error) {
	m.seen = append(m.seen, since)
	return m.sums[since], nil
}

type mockRevenueCache struct {
	stats   *models.RevenueStats
	getErr  error
	setSeen []*models.RevenueStats
}

func (m *mockRevenueCache) GetRevenueStats(ctx context.Context, shopID int64) (*models.RevenueStats, error) {
	return m.stats, m.getErr
}

func (m *mockRevenueCache) SetRevenueStats(ctx context.Context, shopID int64, stats *models.RevenueStats) error {
	m.setSeen = append(m.setSeen, stats)
	return nil
}

func TestGetRevenueStats_WindowBoundaries(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	dayStart := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	st := &mockRevenueStore{
		sums: map[time.Time]int64{
			dayStart:               120,
			now.AddDate(0, 0, -7):  700,
			now.AddDate(0, 0, -30): 3000,
		},
	}
	cache := &mockRevenueCache{}
	svc := NewRevenueService(st, cache)
	svc.now = func() time.Time { return now }

	stats, err := svc.GetRevenueStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(120), stats.Daily)
	assert.Equal(t, int64(700), stats.Weekly)
	assert.Equal(t, int64(3000), stats.Monthly)

	// The daily lower bound is the start of the calendar day, not "now".
	require.Len(t, st.seen, 3)
	assert.Equal(t, dayStart, st.seen[0])
	assert.Equal(t, now.AddDate(0, 0, -7), st.seen[1])
	assert.Equal(t, now.AddDate(0, 0, -30), st.seen[2])

	require.Len(t, cache.setSeen, 1)
	assert.Equal(t, stats, cache.setSeen[0])
}

func TestGetRevenueStats_ZeroOrdersIsNotAnError(t *testing.T) {
	st := &mockRevenueStore{sums: map[time.Time]int64{}}
	svc := NewRevenueService(st, &mockRevenueCache{})

	stats, err := svc.GetRevenueStats(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, &models.RevenueStats{Daily: 0, Weekly: 0, Monthly: 0}, stats)
}

func TestGetRevenueStats_CacheHitSkipsDatabase(t *testing.T) {
	st := &mockRevenueStore{sums: map[time.Time]int64{}}
	cache := &mockRevenueCache{stats: &models.RevenueStats{Daily: 1, Weekly: 2, Monthly: 3}}
	svc := NewRevenueService(st, cache)

	stats, err := svc.GetRevenueStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Daily)
	assert.Empty(t, st.seen, "database must not be queried on a cache hit")
}

func TestGetRevenueStats_CacheErrorFallsThrough(t *testing.T) {
	st := &mockRevenueStore{sums: map[time.Time]int64{}}
	cache := &mockRevenueCache{getErr: errors.New("redis down")}
	svc := NewRevenueService(st, cache)

	stats, err := svc.GetRevenueStats(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Len(t, st.seen, 3)
}
