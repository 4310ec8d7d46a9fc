package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/store"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Filter narrows a search. Zero values mean "not applied".
type Filter struct {
	Category  string
	Condition domain.Condition
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
}

func (f Filter) key() string {
	var b strings.Builder
	b.WriteString(f.Category)
	b.WriteByte('|')
	b.WriteString(string(f.Condition))
	b.WriteByte('|')
	if f.MinPrice != nil {
		b.WriteString(f.MinPrice.String())
	}
	b.WriteByte('|')
	if f.MaxPrice != nil {
		b.WriteString(f.MaxPrice.String())
	}
	return b.String()
}

// Matches reports whether an active product satisfies the text and filter.
func Matches(p domain.Product, text string, f Filter) bool {
	if p.Status != domain.StatusActive {
		return false
	}
	if !containsText(p, text) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Condition != "" && p.Condition != f.Condition {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func containsText(p domain.Product, text string) bool {
	if text == "" {
		return true
	}
	q := strings.ToLower(text)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// Engine answers catalog read queries on top of a CatalogStore.
type Engine struct {
	store store.CatalogStore
	sfg   singleflight.Group // collapses identical concurrent searches
}

func NewEngine(s store.CatalogStore) *Engine {
	return &Engine{store: s}
}

// Search returns the active products matching text and filter, in store order.
func (e *Engine) Search(ctx context.Context, text string, f Filter) ([]domain.Product, error) {
	text = strings.TrimSpace(text)
	key := strings.ToLower(text) + "#" + f.key()

	// The flight outlives any single caller; each caller still honors its own ctx.
	flight := context.WithoutCancel(ctx)
	ch := e.sfg.DoChan(key, func() (interface{}, error) {
		return e.store.List(flight, func(p domain.Product) bool {
			return Matches(p, text, f)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("search products: %w", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("search products: %w", res.Err)
	}

	// Callers sharing a flight must not share slices
	shared := res.Val.([]domain.Product)
	result := make([]domain.Product, len(shared))
	for i, p := range shared {
		result[i] = p.Clone()
	}
	return result, nil
}

// Active returns every listing eligible for browse.
func (e *Engine) Active(ctx context.Context) ([]domain.Product, error) {
	return e.store.List(ctx, store.Active)
}

func (e *Engine) ByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return e.store.List(ctx, store.ActiveInCategory(categoryID))
}

// MyListings returns all of a seller's listings, whatever their status.
func (e *Engine) MyListings(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return e.store.List(ctx, store.BySeller(sellerID))
}

// Related returns up to n other active products from p's category.
func (e *Engine) Related(ctx context.Context, p domain.Product, n int) ([]domain.Product, error) {
	if n <= 0 {
		return []domain.Product{}, nil
	}
	candidates, err := e.store.List(ctx, func(c domain.Product) bool {
		return c.ID != p.ID && c.Status == domain.StatusActive && c.Category == p.Category
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// Detail is a product page: the listing, its seller and related listings.
type Detail struct {
	Product domain.Product   `json:"product"`
	Seller  *domain.Seller   `json:"seller,omitempty"`
	Related []domain.Product `json:"related"`
}

// RelatedLimit is the number of related listings on a product page.
const RelatedLimit = 4

// Detail loads a product with its seller and related listings; nil when the product does not exist.
func (e *Engine) Detail(ctx context.Context, id int64) (*Detail, error) {
	p, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if p == nil {
		return nil, nil
	}

	d := &Detail{Product: *p}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		seller, err := e.store.Seller(gctx, p.SellerID)
		if err != nil {
			return fmt.Errorf("get seller %s: %w", p.SellerID, err)
		}
		d.Seller = seller
		return nil
	})
	g.Go(func() error {
		related, err := e.Related(gctx, *p, RelatedLimit)
		if err != nil {
			return fmt.Errorf("get related products: %w", err)
		}
		d.Related = related
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
