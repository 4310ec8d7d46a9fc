package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/events"
	"github.com/fjod/tradehub/internal/store"
)

type Action string

const (
	ActionDelete   Action = "delete"
	ActionMarkSold Action = "mark_sold"
	ActionPromote  Action = "promote"
)

func (a Action) Valid() bool {
	return a == ActionDelete || a == ActionMarkSold || a == ActionPromote
}

// Coordinator applies one action to a set of listings in a single store call.
// Either every id is affected or none is. Ownership is the caller's concern.
type Coordinator struct {
	store     store.CatalogStore
	publisher events.Publisher
	logger    *slog.Logger
}

func NewCoordinator(s store.CatalogStore, publisher events.Publisher, logger *slog.Logger) *Coordinator {
	return &Coordinator{store: s, publisher: publisher, logger: logger}
}

func (c *Coordinator) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	return c.Apply(ctx, ActionDelete, ids)
}

func (c *Coordinator) BulkMarkAsSold(ctx context.Context, ids []int64) (int, error) {
	return c.Apply(ctx, ActionMarkSold, ids)
}

func (c *Coordinator) BulkPromote(ctx context.Context, ids []int64) (int, error) {
	return c.Apply(ctx, ActionPromote, ids)
}

// Apply runs action over the deduplicated ids and returns how many were affected.
// A missing id fails the whole call with domain.ErrNotFound.
func (c *Coordinator) Apply(ctx context.Context, action Action, ids []int64) (int, error) {
	if !action.Valid() {
		return 0, fmt.Errorf("%w: unknown bulk action %q", domain.ErrValidationFailed, action)
	}

	unique := dedupe(ids)
	if len(unique) == 0 {
		return 0, nil
	}

	var (
		n   int
		err error
	)
	switch action {
	case ActionDelete:
		n, err = c.store.RemoveAll(ctx, unique)
	case ActionMarkSold:
		n, err = c.store.ApplyAll(ctx, unique, func(p *domain.Product) { p.Status = domain.StatusSold })
	case ActionPromote:
		n, err = c.store.ApplyAll(ctx, unique, func(p *domain.Product) { p.Promoted = true })
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("bulk %s: %w", action, err)
		}
		return 0, fmt.Errorf("%w: bulk %s: %w", domain.ErrOperationFailed, action, err)
	}

	c.emit(ctx, action, unique)
	return n, nil
}

type bulkPayload struct {
	Action Action  `json:"action"`
	IDs    []int64 `json:"ids"`
}

func (c *Coordinator) emit(ctx context.Context, action Action, ids []int64) {
	e, err := events.New(events.ListingsBulkUpdated, string(action), bulkPayload{Action: action, IDs: ids})
	if err == nil {
		err = c.publisher.Publish(ctx, e)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "failed to publish bulk event", "action", string(action), "error", err)
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
