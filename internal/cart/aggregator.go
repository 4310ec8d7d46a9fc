package cart

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/events"
	"github.com/fjod/tradehub/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ShippingFee = decimal.NewFromInt(15)
	TaxRate     = decimal.NewFromFloat(0.08)
)

// Aggregator owns the cart lines. Every mutation is written through to storage
// before it becomes visible.
type Aggregator struct {
	mu        sync.RWMutex
	lines     []domain.CartLine
	slot      *storage.Slot[[]domain.CartLine]
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// New loads the persisted cart. Lines with a quantity below one are dropped.
func New(ctx context.Context, store storage.Store, publisher events.Publisher, logger *slog.Logger) (*Aggregator, error) {
	a := &Aggregator{
		slot:      storage.NewSlot[[]domain.CartLine](store, storage.KeyCart),
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}

	lines, _, err := a.slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	for _, l := range lines {
		if l.Quantity >= 1 && !containsLine(a.lines, l.Product.ID) {
			a.lines = append(a.lines, l)
		}
	}
	return a, nil
}

// commit persists next and swaps it in. Callers hold mu.
func (a *Aggregator) commit(ctx context.Context, next []domain.CartLine) error {
	if err := a.slot.Save(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrOperationFailed, err)
	}
	a.lines = next
	return nil
}

func (a *Aggregator) staged() []domain.CartLine {
	next := make([]domain.CartLine, len(a.lines))
	copy(next, a.lines)
	return next
}

// Add puts qty units of p in the cart, incrementing an existing line.
// A zero qty adds one unit.
func (a *Aggregator) Add(ctx context.Context, p domain.Product, qty int) error {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidationFailed)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addLocked(ctx, p, qty)
}

// AddIfAbsent adds one unit of p unless the cart already holds it.
func (a *Aggregator) AddIfAbsent(ctx context.Context, p domain.Product) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if containsLine(a.lines, p.ID) {
		return domain.ErrAlreadyInCart
	}
	return a.addLocked(ctx, p, 1)
}

func (a *Aggregator) addLocked(ctx context.Context, p domain.Product, qty int) error {
	next := a.staged()
	if i := indexOf(next, p.ID); i >= 0 {
		next[i].Quantity += qty
	} else {
		next = append(next, domain.CartLine{Product: p.Clone(), Quantity: qty})
	}
	return a.commit(ctx, next)
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
// Unknown products are ignored.
func (a *Aggregator) UpdateQuantity(ctx context.Context, productID int64, qty int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := indexOf(a.lines, productID)
	if i < 0 {
		return nil
	}

	next := a.staged()
	if qty <= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next[i].Quantity = qty
	}
	return a.commit(ctx, next)
}

func (a *Aggregator) Remove(ctx context.Context, productID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := indexOf(a.lines, productID)
	if i < 0 {
		return nil
	}
	next := slices.Delete(a.staged(), i, i+1)
	return a.commit(ctx, next)
}

func (a *Aggregator) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.commit(ctx, []domain.CartLine{})
}

// Lines returns a copy of the cart lines in insertion order.
func (a *Aggregator) Lines() []domain.CartLine {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]domain.CartLine, len(a.lines))
	for i, l := range a.lines {
		out[i] = domain.CartLine{Product: l.Product.Clone(), Quantity: l.Quantity}
	}
	return out
}

func (a *Aggregator) Contains(productID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return containsLine(a.lines, productID)
}

// Quantity is the quantity held for a product, zero when absent.
func (a *Aggregator) Quantity(productID int64) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if i := indexOf(a.lines, productID); i >= 0 {
		return a.lines[i].Quantity
	}
	return 0
}

// Total is the sum of price * quantity over all lines.
func (a *Aggregator) Total() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return subtotal(a.lines)
}

// Count is the sum of quantities, not the number of lines.
func (a *Aggregator) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := 0
	for _, l := range a.lines {
		n += l.Quantity
	}
	return n
}

func (a *Aggregator) Totals() domain.Totals {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return totals(a.lines)
}

func subtotal(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func totals(lines []domain.CartLine) domain.Totals {
	sub := subtotal(lines)
	shipping := decimal.Zero
	if sub.IsPositive() {
		shipping = ShippingFee
	}
	tax := sub.Mul(TaxRate).Round(2)
	return domain.Totals{
		Subtotal: sub,
		Shipping: shipping,
		Tax:      tax,
		Total:    sub.Add(shipping).Add(tax),
	}
}

// Receipt describes a completed checkout.
type Receipt struct {
	CheckoutID  string            `json:"checkoutId"`
	Lines       []domain.CartLine `json:"lines"`
	Totals      domain.Totals     `json:"totals"`
	CompletedAt time.Time         `json:"completedAt"`
}

// Checkout simulates payment and always succeeds for a non-empty cart.
// The cart is cleared even if persisting the empty cart fails.
func (a *Aggregator) Checkout(ctx context.Context) (*Receipt, error) {
	a.mu.Lock()
	if len(a.lines) == 0 {
		a.mu.Unlock()
		return nil, domain.ErrEmptyCart
	}

	receipt := &Receipt{
		CheckoutID:  uuid.NewString(),
		Lines:       a.lines,
		Totals:      totals(a.lines),
		CompletedAt: a.now().UTC(),
	}

	empty := []domain.CartLine{}
	if err := a.slot.Save(ctx, empty); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist cleared cart after checkout",
			"checkout_id", receipt.CheckoutID, "error", err)
	}
	a.lines = empty
	a.mu.Unlock()

	a.publishCheckout(ctx, receipt)
	return receipt, nil
}

func (a *Aggregator) publishCheckout(ctx context.Context, r *Receipt) {
	e, err := events.New(events.CheckoutCompleted, r.CheckoutID, r)
	if err == nil {
		err = a.publisher.Publish(ctx, e)
	}
	if err != nil {
		a.logger.WarnContext(ctx, "failed to publish checkout event",
			"checkout_id", r.CheckoutID, "error", err)
	}
}

func indexOf(lines []domain.CartLine, productID int64) int {
	return slices.IndexFunc(lines, func(l domain.CartLine) bool {
		return l.Product.ID == productID
	})
}

func containsLine(lines []domain.CartLine, productID int64) bool {
	return indexOf(lines, productID) >= 0
}
