package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fjod/tradehub/internal/domain"
)

// MemoryStore implements CatalogStore over in-memory slices seeded from a fixture.
type MemoryStore struct {
	mu         sync.RWMutex
	products   []domain.Product
	categories []domain.Category
	sellers    []domain.Seller
	orders     []domain.Order
	lastID     int64 // monotonic, only advanced under mu

	latency Latency
	now     func() time.Time
}

// NewMemoryStore creates a catalog owning its own copy of the seed data
func NewMemoryStore(seed Seed, latency Latency) *MemoryStore {
	s := &MemoryStore{
		products:   make([]domain.Product, 0, len(seed.Products)),
		categories: append([]domain.Category(nil), seed.Categories...),
		sellers:    make([]domain.Seller, 0, len(seed.Sellers)),
		orders:     append([]domain.Order(nil), seed.Orders...),
		latency:    latency,
		now:        time.Now,
	}

	for _, p := range seed.Products {
		s.products = append(s.products, p.Clone())
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}
	for _, seller := range seed.Sellers {
		seller.ClampRating()
		s.sellers = append(s.sellers, seller)
	}

	return s
}

func (s *MemoryStore) List(ctx context.Context, pred Predicate) ([]domain.Product, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if pred == nil || pred(p) {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	p := s.products[i].Clone()
	return &p, nil
}

// Insert assigns the next id, stamps the posting time and defaults the status to active.
func (s *MemoryStore) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := s.latency.wait(ctx); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Status == "" {
		p.Status = domain.StatusActive
	}
	return s.insertLocked(p), nil
}

func (s *MemoryStore) insertLocked(p domain.Product) domain.Product {
	s.lastID++
	p = p.Clone()
	p.ID = s.lastID
	p.DatePosted = s.now().UTC()
	s.products = append(s.products, p)
	return p.Clone()
}

func (s *MemoryStore) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	patch.Apply(&s.products[i])
	p := s.products[i].Clone()
	return &p, nil
}

func (s *MemoryStore) Remove(ctx context.Context, id int64) (bool, error) {
	if err := s.latency.wait(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return true, nil
}

// Duplicate copies a listing into a fresh draft with reset counters.
func (s *MemoryStore) Duplicate(ctx context.Context, id int64) (*domain.Product, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	dup := s.products[i].Clone()
	dup.Title += " (Copy)"
	dup.Status = domain.StatusDraft
	dup.Promoted = false
	dup.Views = 0
	dup.Favorites = 0

	created := s.insertLocked(dup)
	return &created, nil
}

func (s *MemoryStore) ApplyAll(ctx context.Context, ids []int64, fn func(p *domain.Product)) (int, error) {
	if err := s.latency.wait(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: every id must exist before anything changes
	positions := make([]int, 0, len(ids))
	for _, id := range ids {
		i := s.indexOf(id)
		if i < 0 {
			return 0, domain.ErrNotFound
		}
		positions = append(positions, i)
	}

	for _, i := range positions {
		fn(&s.products[i])
	}
	return len(positions), nil
}

func (s *MemoryStore) RemoveAll(ctx context.Context, ids []int64) (int, error) {
	if err := s.latency.wait(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if s.indexOf(id) < 0 {
			return 0, domain.ErrNotFound
		}
		doomed[id] = struct{}{}
	}

	kept := s.products[:0]
	for _, p := range s.products {
		if _, ok := doomed[p.ID]; !ok {
			kept = append(kept, p)
		}
	}
	s.products = kept
	return len(doomed), nil
}

// Categories returns every category with its count computed from the active listings.
func (s *MemoryStore) Categories(ctx context.Context) ([]domain.Category, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := s.activeCountsLocked()
	result := make([]domain.Category, len(s.categories))
	for i, c := range s.categories {
		c.Count = counts[c.ID]
		result[i] = c
	}
	return result, nil
}

func (s *MemoryStore) Category(ctx context.Context, id string) (*domain.Category, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID == id {
			c.Count = s.activeCountsLocked()[c.ID]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) activeCountsLocked() map[string]int {
	counts := make(map[string]int, len(s.categories))
	for _, p := range s.products {
		if p.Status == domain.StatusActive {
			counts[p.Category]++
		}
	}
	return counts
}

func (s *MemoryStore) Sellers(ctx context.Context) ([]domain.Seller, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Seller(nil), s.sellers...), nil
}

func (s *MemoryStore) Seller(ctx context.Context, id string) (*domain.Seller, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, seller := range s.sellers {
		if seller.ID == id {
			return &seller, nil
		}
	}
	return nil, nil
}

// Orders returns the user's orders, newest first.
func (s *MemoryStore) Orders(ctx context.Context, userID int64) ([]domain.Order, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OrderDate.After(result[j].OrderDate)
	})
	return result, nil
}

func (s *MemoryStore) Order(ctx context.Context, id int64) (*domain.Order, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			o := s.orders[i]
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) indexOf(id int64) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
