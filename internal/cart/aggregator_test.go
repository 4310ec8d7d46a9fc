package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/events"
	"github.com/fjod/tradehub/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSaveStore struct {
	*storage.MemoryStore
	fail bool
}

func (f *failingSaveStore) Save(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, key, value)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func item(id int64, price int64) domain.Product {
	return domain.Product{ID: id, Title: "item", Price: decimal.NewFromInt(price), Status: domain.StatusActive}
}

func setupCart(t *testing.T) (*Aggregator, *failingSaveStore, *events.Recorder) {
	t.Helper()
	backing := &failingSaveStore{MemoryStore: storage.NewMemoryStore()}
	rec := &events.Recorder{}
	a, err := New(context.Background(), backing, rec, testLogger())
	require.NoError(t, err)
	return a, backing, rec
}

func TestAdd_IncrementsExistingLine(t *testing.T) {
	a, _, _ := setupCart(t)
	ctx := context.Background()
	p := item(1, 10)

	require.NoError(t, a.Add(ctx, p, 2))
	require.NoError(t, a.Add(ctx, p, 3))

	assert.Equal(t, 5, a.Quantity(1))
	assert.Len(t, a.Lines(), 1)
}

func TestAdd_ZeroQuantityAddsOne(t *testing.T) {
	a, _, _ := setupCart(t)

	require.NoError(t, a.Add(context.Background(), item(1, 10), 0))
	assert.Equal(t, 1, a.Quantity(1))
}

func TestAdd_NegativeQuantityRejected(t *testing.T) {
	a, _, _ := setupCart(t)

	err := a.Add(context.Background(), item(1, 10), -2)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Zero(t, a.Count())
}

func TestTotalAndCount(t *testing.T) {
	a, _, _ := setupCart(t)
	ctx := context.Background()

	require.NoError(t, a.Add(ctx, item(1, 10), 2))
	require.NoError(t, a.Add(ctx, item(2, 5), 1))

	assert.True(t, a.Total().Equal(decimal.NewFromInt(25)), "total was %s", a.Total())
	assert.Equal(t, 3, a.Count())
}

func TestCount_SumsQuantities(t *testing.T) {
	a, _, _ := setupCart(t)
	ctx := context.Background()

	require.NoError(t, a.Add(ctx, item(1, 1), 3))
	require.NoError(t, a.Add(ctx, item(2, 1), 2))

	assert.Equal(t, 5, a.Count())
}

func TestUpdateQuantity(t *testing.T) {
	a, _, _ := setupCart(t)
	ctx := context.Background()
	require.NoError(t, a.Add(ctx, item(1, 10), 1))
	require.NoError(t, a.Add(ctx, item(2, 10), 4))
	require.NoError(t, a.Add(ctx, item(3, 10), 4))

	require.NoError(t, a.UpdateQuantity(ctx, 1, 7))
	assert.Equal(t, 7, a.Quantity(1))

	require.NoError(t, a.UpdateQuantity(ctx, 2, 0))
	assert.False(t, a.Contains(2))

	require.NoError(t, a.UpdateQuantity(ctx, 3, -1))
	assert.False(t, a.Contains(3))

	assert.Equal(t, 7, a.Count())

	// unknown ids are ignored
	require.NoError(t, a.UpdateQuantity(ctx, 99, 5))
	assert.False(t, a.Contains(99))
}

func TestRemoveAndClear(t *testing.T) {
	a, _, _ := setupCart(t)
	ctx := context.Background()
	require.NoError(t, a.Add(ctx, item(1, 10), 1))
	require.NoError(t, a.Add(ctx, item(2, 10), 1))

	require.NoError(t, a.Remove(ctx, 1))
	assert.False(t, a.Contains(1))
	assert.True(t, a.Contains(2))

	require.NoError(t, a.Clear(ctx))
	assert.Empty(t, a.Lines())
	assert.True(t, a.Total().IsZero())
}

func TestTotals(t *testing.T) {
	a, _, _ := setupCart(t)
	ctx := context.Background()

	empty := a.Totals()
	assert.True(t, empty.Shipping.IsZero())
	assert.True(t, empty.Total.IsZero())

	require.NoError(t, a.Add(ctx, item(1, 100), 2))
	tot := a.Totals()

	assert.True(t, tot.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, tot.Shipping.Equal(decimal.NewFromInt(15)))
	assert.True(t, tot.Tax.Equal(decimal.NewFromInt(16)))
	assert.True(t, tot.Total.Equal(decimal.NewFromInt(231)))
}

func TestMutation_SaveFailureLeavesStateUnchanged(t *testing.T) {
	a, backing, _ := setupCart(t)
	ctx := context.Background()
	require.NoError(t, a.Add(ctx, item(1, 10), 1))

	backing.fail = true

	err := a.Add(ctx, item(1, 10), 1)
	assert.ErrorIs(t, err, domain.ErrOperationFailed)
	assert.Equal(t, 1, a.Quantity(1))

	assert.ErrorIs(t, a.UpdateQuantity(ctx, 1, 0), domain.ErrOperationFailed)
	assert.ErrorIs(t, a.Remove(ctx, 1), domain.ErrOperationFailed)
	assert.ErrorIs(t, a.Clear(ctx), domain.ErrOperationFailed)
	assert.True(t, a.Contains(1))
}

func TestAddIfAbsent(t *testing.T) {
	a, _, _ := setupCart(t)
	ctx := context.Background()

	require.NoError(t, a.AddIfAbsent(ctx, item(1, 10)))
	assert.ErrorIs(t, a.AddIfAbsent(ctx, item(1, 10)), domain.ErrAlreadyInCart)
	assert.Equal(t, 1, a.Quantity(1))
}

func TestNew_LoadsPersistedLines(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemoryStore()

	first, err := New(ctx, backing, &events.Recorder{}, testLogger())
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, item(1, 10), 2))
	require.NoError(t, first.Add(ctx, item(2, 3), 1))

	second, err := New(ctx, backing, &events.Recorder{}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 3, second.Count())
	assert.True(t, second.Total().Equal(decimal.NewFromInt(23)))
}

func TestNew_DropsInvalidPersistedLines(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemoryStore()
	slot := storage.NewSlot[[]domain.CartLine](backing, storage.KeyCart)
	require.NoError(t, slot.Save(ctx, []domain.CartLine{
		{Product: item(1, 10), Quantity: 0},
		{Product: item(2, 10), Quantity: 1},
		{Product: item(2, 10), Quantity: 4},
	}))

	a, err := New(ctx, backing, &events.Recorder{}, testLogger())
	require.NoError(t, err)

	assert.False(t, a.Contains(1))
	assert.Equal(t, 1, a.Quantity(2))
}

func TestCheckout(t *testing.T) {
	a, _, rec := setupCart(t)
	ctx := context.Background()
	require.NoError(t, a.Add(ctx, item(1, 10), 2))

	receipt, err := a.Checkout(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.CheckoutID)
	assert.Len(t, receipt.Lines, 1)
	assert.True(t, receipt.Totals.Subtotal.Equal(decimal.NewFromInt(20)))
	assert.Zero(t, a.Count())

	published := rec.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.CheckoutCompleted, published[0].Type)
	assert.Equal(t, receipt.CheckoutID, published[0].AggregateID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	a, _, rec := setupCart(t)

	_, err := a.Checkout(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, rec.Events())
}

func TestCheckout_ClearsEvenWhenPublishAndSaveFail(t *testing.T) {
	a, backing, rec := setupCart(t)
	ctx := context.Background()
	require.NoError(t, a.Add(ctx, item(1, 10), 1))

	backing.fail = true
	rec.Err = errors.New("broker down")

	receipt, err := a.Checkout(ctx)
	require.NoError(t, err)
	assert.NotNil(t, receipt)
	assert.Zero(t, a.Count())
}
