package inventory

import (
	"context"
	"sync"

	"cloud.google.com/go/civil"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Item
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*Item)}
}

func (r *MemoryRepository) Create(_ context.Context, items []*Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		cp := *it
		if _, exists := r.items[cp.ID]; !exists {
			r.order = append(r.order, cp.ID)
		}
		r.items[cp.ID] = &cp
	}
	return nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Item
	for _, id := range r.order {
		it, ok := r.items[id]
		if !ok || it.UserID != userID {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, userID, id string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok || it.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *MemoryRepository) Update(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[item.ID]
	if !ok || cur.UserID != item.UserID {
		return ErrNotFound
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[id]
	if !ok || cur.UserID != userID {
		return ErrNotFound
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) ListExpiringOn(_ context.Context, date civil.Date) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Item
	for _, id := range r.order {
		it := r.items[id]
		if d, ok := it.Expiry.Civil(); ok && d == date {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}
