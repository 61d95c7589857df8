package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/event"
)

type CreateRequest struct {
	Name     string
	Kind     Kind
	Capacity *int
}

// Store is the resource manager's view of the catalog.
type Store interface {
	Add(ctx context.Context, req CreateRequest) (*Resource, error)
	Remove(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, error)
	Count(ctx context.Context) (int, error)
	// DisplayName resolves id to a name, or UnknownResourceName when the
	// resource is gone. Bookings are never validated against the catalog.
	DisplayName(ctx context.Context, id int64) string
}

type store struct {
	repo   Repository
	events event.Publisher
	now    func() time.Time
	logger *slog.Logger
}

// NewStore wires the catalog to its repository and change bus.
// events and logger may be nil.
func NewStore(repo Repository, events event.Publisher, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &store{
		repo:   repo,
		events: events,
		now:    time.Now,
		logger: logger.With("component", "resource_store"),
	}
}

func (s *store) Add(ctx context.Context, req CreateRequest) (*Resource, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	kind := req.Kind
	if kind == "" {
		kind = KindRoom
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	var capacity *int
	if kind == KindRoom && req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, ErrInvalidCapacity
		}
		c := *req.Capacity
		capacity = &c
	}

	res := &Resource{
		Name:      name,
		Kind:      kind,
		Capacity:  capacity,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create resource failed: %w", err)
	}

	s.logger.InfoContext(ctx, "resource added", "resource_id", res.ID, "kind", res.Kind)
	s.publish(event.ActionCreated, res.ID, true)
	return res, nil
}

func (s *store) Remove(ctx context.Context, id int64) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete resource failed: %w", err)
	}

	// Bookings that reference id are left alone; lookups fall back to UnknownResourceName.
	s.logger.InfoContext(ctx, "resource removed", "resource_id", id, "found", found)
	s.publish(event.ActionDeleted, id, found)
	return nil
}

func (s *store) GetByID(ctx context.Context, id int64) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *store) List(ctx context.Context, filter Filter) ([]*Resource, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	return s.repo.List(ctx, filter)
}

func (s *store) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *store) DisplayName(ctx context.Context, id int64) string {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "resource lookup failed", "resource_id", id, "error", err)
		}
		return UnknownResourceName
	}
	return res.Name
}

func (s *store) publish(action event.Action, id int64, found bool) {
	if s.events == nil {
		return
	}
	s.events.Publish(event.New(event.EntityResource, action, id, found, s.now()))
}
