package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted collections.
const (
	KeyCart     = "tradehub_cart"
	KeyWishlist = "tradehub_wishlist"
	KeyAuth     = "tradehub_auth"
)

var ErrNotFound = errors.New("storage key not found")

// Store is a key/value persistence boundary. Values are opaque JSON documents,
// last write wins.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Slot binds one key of a Store to a typed value.
type Slot[T any] struct {
	store Store
	key   string
}

func NewSlot[T any](store Store, key string) *Slot[T] {
	return &Slot[T]{store: store, key: key}
}

func (s *Slot[T]) Key() string {
	return s.key
}

// Load decodes the stored value. ok is false when nothing was stored yet.
func (s *Slot[T]) Load(ctx context.Context) (value T, ok bool, err error) {
	data, err := s.store.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("load %s: %w", s.key, err)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("unmarshal %s: %w", s.key, err)
	}
	return value, true, nil
}

func (s *Slot[T]) Save(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.key, err)
	}
	if err := s.store.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

func (s *Slot[T]) Delete(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete %s: %w", s.key, err)
	}
	return nil
}
