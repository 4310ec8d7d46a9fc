package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/storage"
)

// Cart is the part of the cart aggregator a move-to-cart needs.
type Cart interface {
	AddIfAbsent(ctx context.Context, p domain.Product) error
	Remove(ctx context.Context, productID int64) error
}

// Reconciler keeps a deduplicated, write-through wishlist.
type Reconciler struct {
	mu      sync.RWMutex
	entries []domain.WishlistEntry
	slot    *storage.Slot[[]domain.WishlistEntry]
	cart    Cart
	logger  *slog.Logger
	now     func() time.Time
}

func New(ctx context.Context, store storage.Store, cart Cart, logger *slog.Logger) (*Reconciler, error) {
	r := &Reconciler{
		slot:   storage.NewSlot[[]domain.WishlistEntry](store, storage.KeyWishlist),
		cart:   cart,
		logger: logger,
		now:    time.Now,
	}

	entries, _, err := r.slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	for _, e := range entries {
		if indexOf(r.entries, e.Product.ID) < 0 {
			r.entries = append(r.entries, e)
		}
	}
	return r, nil
}

func (r *Reconciler) commit(ctx context.Context, next []domain.WishlistEntry) error {
	if err := r.slot.Save(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrOperationFailed, err)
	}
	r.entries = next
	return nil
}

// Add saves p. It reports false without error when p is already saved.
func (r *Reconciler) Add(ctx context.Context, p domain.Product) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(ctx, p)
}

func (r *Reconciler) addLocked(ctx context.Context, p domain.Product) (bool, error) {
	if indexOf(r.entries, p.ID) >= 0 {
		return false, nil
	}
	next := append(slices.Clone(r.entries), domain.WishlistEntry{Product: p.Clone(), AddedAt: r.now().UTC()})
	if err := r.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Reconciler) Remove(ctx context.Context, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(ctx, productID)
}

func (r *Reconciler) removeLocked(ctx context.Context, productID int64) error {
	i := indexOf(r.entries, productID)
	if i < 0 {
		return nil
	}
	return r.commit(ctx, slices.Delete(slices.Clone(r.entries), i, i+1))
}

// Toggle adds p when absent and removes it when present. It returns whether p
// is in the wishlist afterwards.
func (r *Reconciler) Toggle(ctx context.Context, p domain.Product) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if indexOf(r.entries, p.ID) >= 0 {
		if err := r.removeLocked(ctx, p.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := r.addLocked(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Reconciler) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commit(ctx, []domain.WishlistEntry{})
}

// MoveToCart transfers p from the wishlist into the cart as one step.
// If the cart already holds p nothing changes and ErrAlreadyInCart is returned.
// The wishlist entry is only removed once the cart write succeeded; if the
// removal cannot be saved the cart addition is undone.
func (r *Reconciler) MoveToCart(ctx context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cart.AddIfAbsent(ctx, p); err != nil {
		if errors.Is(err, domain.ErrAlreadyInCart) {
			return err
		}
		return fmt.Errorf("%w: add to cart: %w", domain.ErrOperationFailed, err)
	}

	if err := r.removeLocked(ctx, p.ID); err != nil {
		if rbErr := r.cart.Remove(ctx, p.ID); rbErr != nil {
			r.logger.ErrorContext(ctx, "failed to roll back cart after wishlist save failure",
				"product_id", p.ID, "error", rbErr)
		}
		return err
	}
	return nil
}

func (r *Reconciler) Contains(productID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return indexOf(r.entries, productID) >= 0
}

// Items returns a copy of the entries, oldest first.
func (r *Reconciler) Items() []domain.WishlistEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.WishlistEntry, len(r.entries))
	for i, e := range r.entries {
		out[i] = domain.WishlistEntry{Product: e.Product.Clone(), AddedAt: e.AddedAt}
	}
	return out
}

func (r *Reconciler) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func indexOf(entries []domain.WishlistEntry, productID int64) int {
	return slices.IndexFunc(entries, func(e domain.WishlistEntry) bool {
		return e.Product.ID == productID
	})
}
