package wishlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fjod/tradehub/internal/cart"
	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/events"
	"github.com/fjod/tradehub/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyFailStore fails saves for the keys listed in failing.
type keyFailStore struct {
	*storage.MemoryStore
	failing map[string]bool
}

func (k *keyFailStore) Save(ctx context.Context, key string, value []byte) error {
	if k.failing[key] {
		return errors.New("quota exceeded")
	}
	return k.MemoryStore.Save(ctx, key, value)
}

func product(id int64) domain.Product {
	return domain.Product{ID: id, Title: "saved", Price: decimal.NewFromInt(12), Status: domain.StatusActive}
}

func setup(t *testing.T) (*Reconciler, *cart.Aggregator, *keyFailStore) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backing := &keyFailStore{MemoryStore: storage.NewMemoryStore(), failing: map[string]bool{}}

	c, err := cart.New(ctx, backing, &events.Recorder{}, logger)
	require.NoError(t, err)
	r, err := New(ctx, backing, c, logger)
	require.NoError(t, err)
	return r, c, backing
}

func TestAdd_Idempotent(t *testing.T) {
	r, _, _ := setup(t)
	ctx := context.Background()

	added, err := r.Add(ctx, product(1))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.Add(ctx, product(1))
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, 1, r.Count())
	assert.True(t, r.Contains(1))
}

func TestRemoveAndClear(t *testing.T) {
	r, _, _ := setup(t)
	ctx := context.Background()
	_, _ = r.Add(ctx, product(1))
	_, _ = r.Add(ctx, product(2))

	require.NoError(t, r.Remove(ctx, 1))
	assert.False(t, r.Contains(1))
	require.NoError(t, r.Remove(ctx, 42))

	require.NoError(t, r.Clear(ctx))
	assert.Zero(t, r.Count())
}

func TestToggle(t *testing.T) {
	r, _, _ := setup(t)
	ctx := context.Background()

	in, err := r.Toggle(ctx, product(3))
	require.NoError(t, err)
	assert.True(t, in)

	in, err = r.Toggle(ctx, product(3))
	require.NoError(t, err)
	assert.False(t, in)
	assert.False(t, r.Contains(3))
}

func TestMoveToCart_NotInCart(t *testing.T) {
	r, c, _ := setup(t)
	ctx := context.Background()
	_, _ = r.Add(ctx, product(1))

	require.NoError(t, r.MoveToCart(ctx, product(1)))

	assert.False(t, r.Contains(1))
	assert.GreaterOrEqual(t, c.Quantity(1), 1)
}

func TestMoveToCart_AlreadyInCart(t *testing.T) {
	r, c, _ := setup(t)
	ctx := context.Background()
	_, _ = r.Add(ctx, product(1))
	require.NoError(t, c.Add(ctx, product(1), 2))

	err := r.MoveToCart(ctx, product(1))
	assert.ErrorIs(t, err, domain.ErrAlreadyInCart)

	assert.True(t, r.Contains(1))
	assert.Equal(t, 2, c.Quantity(1))
}

func TestMoveToCart_CartFailureKeepsWishlist(t *testing.T) {
	r, c, backing := setup(t)
	ctx := context.Background()
	_, _ = r.Add(ctx, product(1))
	backing.failing[storage.KeyCart] = true

	err := r.MoveToCart(ctx, product(1))
	assert.ErrorIs(t, err, domain.ErrOperationFailed)

	assert.True(t, r.Contains(1))
	assert.False(t, c.Contains(1))
}

func TestMoveToCart_WishlistFailureRollsBackCart(t *testing.T) {
	r, c, backing := setup(t)
	ctx := context.Background()
	_, _ = r.Add(ctx, product(1))
	backing.failing[storage.KeyWishlist] = true

	err := r.MoveToCart(ctx, product(1))
	assert.ErrorIs(t, err, domain.ErrOperationFailed)

	assert.True(t, r.Contains(1))
	assert.False(t, c.Contains(1))
}

func TestAdd_SaveFailure(t *testing.T) {
	r, _, backing := setup(t)
	backing.failing[storage.KeyWishlist] = true

	added, err := r.Add(context.Background(), product(1))
	assert.ErrorIs(t, err, domain.ErrOperationFailed)
	assert.False(t, added)
	assert.False(t, r.Contains(1))
}

func TestNew_LoadsPersistedEntries(t *testing.T) {
	r, c, backing := setup(t)
	ctx := context.Background()
	_, _ = r.Add(ctx, product(1))
	_, _ = r.Add(ctx, product(2))

	reloaded, err := New(ctx, backing, c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].Product.ID)
	assert.False(t, items[0].AddedAt.IsZero())
}
