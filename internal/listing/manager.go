package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/events"
	"github.com/fjod/tradehub/internal/store"
	"github.com/google/uuid"
)

// Drafts holds the drafts in progress, keyed by id.
type Drafts struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewDrafts() *Drafts {
	return &Drafts{drafts: make(map[string]*Draft)}
}

func (r *Drafts) Create(sellerID string) *Draft {
	d := NewDraft(uuid.NewString(), sellerID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID()] = d
	return d
}

func (r *Drafts) Get(id string) (*Draft, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drafts[id]
	return d, ok
}

func (r *Drafts) Discard(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, id)
}

// Manager publishes drafts and runs single-listing actions against the catalog.
type Manager struct {
	store     store.CatalogStore
	publisher events.Publisher
	logger    *slog.Logger
	drafts    *Drafts
}

func NewManager(s store.CatalogStore, publisher events.Publisher, logger *slog.Logger) *Manager {
	return &Manager{
		store:     s,
		publisher: publisher,
		logger:    logger,
		drafts:    NewDrafts(),
	}
}

func (m *Manager) Drafts() *Drafts {
	return m.drafts
}

// Publish validates a draft on the review step and inserts it as an active listing.
// The draft is discarded once published.
func (m *Manager) Publish(ctx context.Context, d *Draft) (domain.Product, error) {
	p, err := d.product()
	if err != nil {
		return domain.Product{}, err
	}

	created, err := m.store.Insert(ctx, p)
	if err != nil {
		d.release()
		return domain.Product{}, fmt.Errorf("%w: create listing: %w", domain.ErrOperationFailed, err)
	}
	m.drafts.Discard(d.ID())

	m.emit(ctx, events.ListingPublished, fmt.Sprint(created.ID), created)
	return created, nil
}

// MarkAsSold returns nil when the listing does not exist.
func (m *Manager) MarkAsSold(ctx context.Context, id int64) (*domain.Product, error) {
	status := domain.StatusSold
	return m.update(ctx, id, domain.ProductPatch{Status: &status})
}

func (m *Manager) Promote(ctx context.Context, id int64) (*domain.Product, error) {
	promoted := true
	return m.update(ctx, id, domain.ProductPatch{Promoted: &promoted})
}

// Update applies a free-form patch to a listing.
func (m *Manager) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidationFailed, *patch.Status)
	}
	if patch.Condition != nil && !patch.Condition.Valid() {
		return nil, fmt.Errorf("%w: unknown condition %q", domain.ErrValidationFailed, *patch.Condition)
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidationFailed)
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"title", patch.Title},
		{"description", patch.Description},
		{"category", patch.Category},
		{"location", patch.Location},
	} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return nil, fmt.Errorf("%w: %s must not be blank", domain.ErrValidationFailed, f.name)
		}
	}
	if patch.Images != nil {
		patch.Images = cleanImages(patch.Images)
	}
	return m.update(ctx, id, patch)
}

// cleanImages drops blank entries; a listing always keeps at least the default image.
func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	if len(out) == 0 {
		return []string{DefaultImage}
	}
	return out
}

func (m *Manager) update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	p, err := m.store.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("%w: update listing %d: %w", domain.ErrOperationFailed, id, err)
	}
	return p, nil
}

// Duplicate copies a listing into a new draft listing; nil when the source does not exist.
func (m *Manager) Duplicate(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := m.store.Duplicate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate listing %d: %w", domain.ErrOperationFailed, id, err)
	}
	return p, nil
}

func (m *Manager) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := m.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: delete listing %d: %w", domain.ErrOperationFailed, id, err)
	}
	return ok, nil
}

func (m *Manager) emit(ctx context.Context, t events.Type, aggregateID string, payload any) {
	e, err := events.New(t, aggregateID, payload)
	if err == nil {
		err = m.publisher.Publish(ctx, e)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.WarnContext(ctx, "failed to publish event", "event_type", string(t), "error", err)
	}
}
