package resource

import (
	"context"
	"sync"
)

// Repository keeps the resource catalog. Implementations return copies so
// callers can never reach the stored records.
type Repository interface {
	// Create assigns res.ID and stores a copy.
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id int64) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

type memoryRepository struct {
	mu        sync.RWMutex
	resources []*Resource
	nextID    int64
}

// NewMemoryRepository creates an in-memory catalog pre-loaded with seed.
// Seed records keep their ids; new ids continue from the largest seed id.
// The counter never moves backwards, so ids are not reused after deletes,
// even once the catalog is empty.
func NewMemoryRepository(seed ...Resource) Repository {
	r := &memoryRepository{nextID: 1}
	for i := range seed {
		res := seed[i].clone()
		r.resources = append(r.resources, res)
		if res.ID >= r.nextID {
			r.nextID = res.ID + 1
		}
	}
	return r
}

func (r *memoryRepository) Create(ctx context.Context, res *Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res.ID = r.nextID
	r.nextID++
	r.resources = append(r.resources, res.clone())
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id int64) (*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, res := range r.resources {
		if res.ID == id {
			return res.clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) List(ctx context.Context, filter Filter) ([]*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Resource, 0, len(r.resources))
	for _, res := range r.resources {
		if filter.Kind != "" && res.Kind != filter.Kind {
			continue
		}
		result = append(result, res.clone())
	}
	return result, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, res := range r.resources {
		if res.ID == id {
			r.resources = append(r.resources[:i], r.resources[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources), nil
}
