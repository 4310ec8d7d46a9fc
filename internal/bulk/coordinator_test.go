package bulk

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/events"
	"github.com/fjod/tradehub/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Coordinator, *store.MemoryStore, *events.Recorder) {
	t.Helper()
	seed := store.Seed{Products: []domain.Product{
		{ID: 1, Title: "A", Price: decimal.NewFromInt(10), SellerID: "1", Status: domain.StatusActive},
		{ID: 2, Title: "B", Price: decimal.NewFromInt(20), SellerID: "1", Status: domain.StatusActive},
		{ID: 3, Title: "C", Price: decimal.NewFromInt(30), SellerID: "1", Status: domain.StatusDraft},
	}}
	s := store.NewMemoryStore(seed, store.NoLatency)
	rec := &events.Recorder{}
	return NewCoordinator(s, rec, slog.New(slog.NewTextHandler(io.Discard, nil))), s, rec
}

func status(t *testing.T, s *store.MemoryStore, id int64) domain.ProductStatus {
	t.Helper()
	p, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Status
}

func TestBulkMarkAsSold(t *testing.T) {
	c, s, rec := setup(t)

	n, err := c.BulkMarkAsSold(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, domain.StatusSold, status(t, s, 1))
	assert.Equal(t, domain.StatusSold, status(t, s, 2))
	assert.Equal(t, domain.StatusDraft, status(t, s, 3))

	published := rec.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.ListingsBulkUpdated, published[0].Type)
	assert.JSONEq(t, `{"action":"mark_sold","ids":[1,2]}`, string(published[0].Payload))
}

func TestBulkPromote_Dedupes(t *testing.T) {
	c, s, _ := setup(t)
	ctx := context.Background()

	n, err := c.BulkPromote(ctx, []int64{3, 3, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, _ := s.GetByID(ctx, 3)
	assert.True(t, p.Promoted)
	p, _ = s.GetByID(ctx, 2)
	assert.False(t, p.Promoted)
}

func TestBulkDelete(t *testing.T) {
	c, s, _ := setup(t)
	ctx := context.Background()

	n, err := c.BulkDelete(ctx, []int64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, _ := s.List(ctx, nil)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].ID)
}

func TestBulk_MissingIDChangesNothing(t *testing.T) {
	c, s, rec := setup(t)
	ctx := context.Background()

	_, err := c.BulkMarkAsSold(ctx, []int64{1, 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.StatusActive, status(t, s, 1))

	_, err = c.BulkDelete(ctx, []int64{2, 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	all, _ := s.List(ctx, nil)
	assert.Len(t, all, 3)

	assert.Empty(t, rec.Events())
}

func TestBulk_EmptySet(t *testing.T) {
	c, _, rec := setup(t)

	n, err := c.BulkPromote(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.Events())
}

func TestApply_UnknownAction(t *testing.T) {
	c, _, _ := setup(t)

	_, err := c.Apply(context.Background(), "archive", []int64{1})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}
