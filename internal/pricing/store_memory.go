package pricing

import (
	"context"
	"slices"
	"sync"
)

// MemStore keeps records in insertion order, matching the first-match
// semantics the user lookup relies on.
type MemStore struct {
	mu       sync.RWMutex
	products []Product
	users    []UserRecord
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) ScanProducts(ctx context.Context, fn func(Product) error) error {
	s.mu.RLock()
	snapshot := slices.Clone(s.products)
	s.mu.RUnlock()

	for _, p := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemStore) ScanUsers(ctx context.Context, fn func(UserRecord) error) error {
	s.mu.RLock()
	snapshot := slices.Clone(s.users)
	s.mu.RUnlock()

	for _, u := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemStore) InsertProduct(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	return nil
}

func (s *MemStore) InsertUser(ctx context.Context, u UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	return nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
