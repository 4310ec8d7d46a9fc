package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/store"
	"github.com/shopspring/decimal"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// Filter narrows a user's order history. Zero values are not applied.
type Filter struct {
	Status   string
	From     *time.Time
	To       *time.Time // inclusive through the end of that day
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type Stats struct {
	TotalPurchases int             `json:"totalPurchases"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
	PendingOrders  int             `json:"pendingOrders"`
}

// Service answers order history queries. Results are newest first.
type Service struct {
	store store.CatalogStore
}

func NewService(s store.CatalogStore) *Service {
	return &Service{store: s}
}

func (s *Service) ByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.store.Orders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	return orders, nil
}

// Search matches order number, product title, seller name and status.
// A blank term returns every order of the user.
func (s *Service) Search(ctx context.Context, userID int64, term string) ([]domain.Order, error) {
	orders, err := s.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return matchTerm(orders, term), nil
}

// Find applies the filter and then the search term.
func (s *Service) Find(ctx context.Context, userID int64, term string, f Filter) ([]domain.Order, error) {
	orders, err := s.Filter(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return matchTerm(orders, term), nil
}

func matchTerm(orders []domain.Order, term string) []domain.Order {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return orders
	}

	result := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.OrderNumber), term) ||
			strings.Contains(strings.ToLower(o.Product.Title), term) ||
			strings.Contains(strings.ToLower(o.Seller.Name), term) ||
			strings.Contains(strings.ToLower(string(o.Status)), term) {
			result = append(result, o)
		}
	}
	return result
}

func (s *Service) Filter(ctx context.Context, userID int64, f Filter) ([]domain.Order, error) {
	orders, err := s.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var until time.Time
	if f.To != nil {
		y, m, d := f.To.Date()
		until = time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), f.To.Location())
	}

	result := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if f.Status != "" && f.Status != StatusAll && string(o.Status) != f.Status {
			continue
		}
		if f.From != nil && o.OrderDate.Before(*f.From) {
			continue
		}
		if f.To != nil && o.OrderDate.After(until) {
			continue
		}
		if f.MinPrice != nil && o.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && o.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

func (s *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	orders, err := s.ByUser(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalPurchases: len(orders), TotalSpent: decimal.Zero}
	for _, o := range orders {
		stats.TotalSpent = stats.TotalSpent.Add(o.Price)
		if o.Status.IsOpen() {
			stats.PendingOrders++
		}
	}
	return stats, nil
}

// Get returns nil when the order does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := s.store.Order(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// UpdateStatus returns domain.ErrNotFound for an unknown order.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrValidationFailed, status)
	}
	o, err := s.store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	return o, nil
}
