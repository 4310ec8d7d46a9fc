package store

import (
	"context"

	"github.com/fjod/tradehub/internal/domain"
)

// Predicate selects products in List. A nil predicate matches everything.
type Predicate func(p domain.Product) bool

// CatalogStore defines the catalog operations every consumer depends on.
// Single-item lookups and mutations report a missing id with a nil/false result;
// administrative operations (ApplyAll, RemoveAll, UpdateOrderStatus) return domain.ErrNotFound.
// A non-nil error otherwise means the call failed as a whole and changed nothing.
type CatalogStore interface {
	List(ctx context.Context, pred Predicate) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Remove(ctx context.Context, id int64) (bool, error)
	Duplicate(ctx context.Context, id int64) (*domain.Product, error)

	// ApplyAll mutates every listed product in one step, or none of them if any id is missing.
	ApplyAll(ctx context.Context, ids []int64, fn func(p *domain.Product)) (int, error)
	// RemoveAll deletes every listed product in one step, or none of them if any id is missing.
	RemoveAll(ctx context.Context, ids []int64) (int, error)

	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id string) (*domain.Category, error)
	Sellers(ctx context.Context) ([]domain.Seller, error)
	Seller(ctx context.Context, id string) (*domain.Seller, error)

	Orders(ctx context.Context, userID int64) ([]domain.Order, error)
	Order(ctx context.Context, id int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

// Active matches listings eligible for browse and search.
func Active(p domain.Product) bool {
	return p.Status == domain.StatusActive
}

// BySeller matches every listing owned by the seller, whatever its status.
func BySeller(sellerID string) Predicate {
	return func(p domain.Product) bool {
		return p.SellerID == sellerID
	}
}

// ActiveInCategory matches active listings of one category.
func ActiveInCategory(categoryID string) Predicate {
	return func(p domain.Product) bool {
		return p.Status == domain.StatusActive && p.Category == categoryID
	}
}
