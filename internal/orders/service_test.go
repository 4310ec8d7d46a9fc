package orders

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	seed, err := store.LoadFixtures()
	require.NoError(t, err)
	return NewService(store.NewMemoryStore(seed, store.NoLatency))
}

func orderIDs(orders []domain.Order) []int64 {
	out := make([]int64, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func TestByUser_NewestFirst(t *testing.T) {
	s := setupService(t)

	orders, err := s.ByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2, 1, 5}, orderIDs(orders))
}

func TestSearch(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	tests := []struct {
		term string
		want []int64
	}{
		{"", []int64{4, 3, 2, 1, 5}},
		{"TH-2024-0002", []int64{2}},
		{"macbook", []int64{5}},
		{"sarah", []int64{4, 2, 1}},
		{"delivered", []int64{1}},
		{"nothing matches", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := s.Search(ctx, 1, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, orderIDs(got))
		})
	}
}

func TestFilter(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()
	from := time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	minPrice := decimal.NewFromInt(90)
	maxPrice := decimal.NewFromInt(600)

	got, err := s.Filter(ctx, 1, Filter{Status: StatusAll})
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = s.Filter(ctx, 1, Filter{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, orderIDs(got))

	// order 3 is at 09:12 on the "to" day and must be included
	got, err = s.Filter(ctx, 1, Filter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, orderIDs(got))

	got, err = s.Filter(ctx, 1, Filter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, orderIDs(got))
}

func TestStats(t *testing.T) {
	s := setupService(t)

	stats, err := s.Stats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalPurchases)
	assert.True(t, stats.TotalSpent.Equal(decimal.NewFromInt(2089)), "spent %s", stats.TotalSpent)
	assert.Equal(t, 2, stats.PendingOrders)

	empty, err := s.Stats(context.Background(), 42)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalPurchases)
	assert.True(t, empty.TotalSpent.IsZero())
}

func TestGetAndUpdateStatus(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	o, err := s.Get(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, domain.OrderStatusPending, o.Status)

	updated, err := s.UpdateStatus(ctx, 4, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, updated.Status)

	_, err = s.UpdateStatus(ctx, 999, domain.OrderStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.UpdateStatus(ctx, 4, "lost")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	missing, err := s.Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFind_CombinesTermAndFilter(t *testing.T) {
	s := setupService(t)
	minPrice := decimal.NewFromInt(90)

	got, err := s.Find(context.Background(), 1, "sarah", Filter{MinPrice: &minPrice})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 1}, orderIDs(got))
}
