package booking

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Repository interface {
	// Create assigns b.ID and stores a copy. It never checks for conflicts.
	Create(ctx context.Context, b *Booking) error
	// CreateIfAvailable is Create guarded by an overlap check that runs under
	// the same lock as the insert. It returns ErrTimeConflict on overlap.
	CreateIfAvailable(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	// List returns copies in insertion order.
	List(ctx context.Context, filter Filter) ([]*Booking, error)
	// Delete reports whether a booking was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// HasOverlap checks if any booking of the resource intersects [start, end).
	HasOverlap(ctx context.Context, resourceID int64, start, end time.Time) (bool, error)
}

type memoryRepository struct {
	mu sync.RWMutex
	// ordered holds every booking in insertion order.
	ordered []*Booking
	// byResource holds the same pointers bucketed per resource, sorted by Start.
	byResource map[int64][]*Booking
	nextID     int64
}

// NewMemoryRepository creates an empty in-memory repository. Ids start at 1.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byResource: make(map[int64][]*Booking),
		nextID:     1,
	}
}

func (r *memoryRepository) Create(ctx context.Context, b *Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.insertLocked(b)
	return nil
}

func (r *memoryRepository) CreateIfAvailable(ctx context.Context, b *Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlapsLocked(b.ResourceID, b.Start, b.End) {
		return ErrTimeConflict
	}
	r.insertLocked(b)
	return nil
}

func (r *memoryRepository) insertLocked(b *Booking) {
	b.ID = r.nextID
	r.nextID++

	stored := b.clone()
	r.ordered = append(r.ordered, stored)

	bucket := r.byResource[stored.ResourceID]
	// Insert after any booking with the same start to keep ties in insertion order.
	i := sort.Search(len(bucket), func(i int) bool {
		return bucket[i].Start.After(stored.Start)
	})
	bucket = append(bucket, nil)
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = stored
	r.byResource[stored.ResourceID] = bucket
}

func (r *memoryRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.ordered {
		if b.ID == id {
			return b.clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) List(ctx context.Context, filter Filter) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Booking, 0, len(r.ordered))
	for _, b := range r.ordered {
		if !filter.matches(b) {
			continue
		}
		result = append(result, b.clone())
	}
	return result, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, b := range r.ordered {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	removed := r.ordered[idx]
	r.ordered = append(r.ordered[:idx], r.ordered[idx+1:]...)

	bucket := r.byResource[removed.ResourceID]
	for i, b := range bucket {
		if b == removed {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(r.byResource, removed.ResourceID)
	} else {
		r.byResource[removed.ResourceID] = bucket
	}
	return true, nil
}

func (r *memoryRepository) HasOverlap(ctx context.Context, resourceID int64, start, end time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.overlapsLocked(resourceID, start, end), nil
}

// overlapsLocked applies (start < b.End) AND (end > b.Start) to the
// resource's bucket. Bookings at or after the cut-off start no earlier than
// end and cannot overlap.
func (r *memoryRepository) overlapsLocked(resourceID int64, start, end time.Time) bool {
	bucket := r.byResource[resourceID]
	cut := sort.Search(len(bucket), func(i int) bool {
		return !bucket[i].Start.Before(end)
	})
	for _, b := range bucket[:cut] {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
