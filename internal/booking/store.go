package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/event"
)

type CreateRequest struct {
	ResourceID  int64
	Start       time.Time
	End         time.Time
	Title       string
	Description string
}

// Store owns the bookings. Availability checks are advisory: unless
// conflict enforcement is enabled, Create accepts every request.
type Store interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	// Delete removes the booking if present. Unknown ids are not an error.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	// List returns an independent snapshot in insertion order. Upcoming is
	// resolved against the store clock.
	List(ctx context.Context, filter Filter) ([]*Booking, error)

	// CheckAvailability delivers exactly one result on the returned channel
	// and then closes it. Inverted or empty intervals are never available.
	CheckAvailability(ctx context.Context, resourceID int64, start, end time.Time) <-chan bool
	IsAvailable(ctx context.Context, resourceID int64, start, end time.Time) (bool, error)
	// FreeSlots lists the gaps between the resource's bookings within the
	// opening hours of day.
	FreeSlots(ctx context.Context, resourceID int64, day time.Time, opening, closing string) ([]TimeSlot, error)
}

// Option configures a Store.
type Option func(*store)

// WithConflictEnforcement makes Create reject inverted intervals and
// overlapping bookings atomically.
func WithConflictEnforcement() Option {
	return func(s *store) { s.enforceConflicts = true }
}

// WithClock overrides the time source used for CreatedAt and events.
func WithClock(now func() time.Time) Option {
	return func(s *store) { s.now = now }
}

// WithLogger sets the logger; the store adds a component attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(s *store) { s.logger = logger }
}

type store struct {
	repo             Repository
	events           event.Publisher
	enforceConflicts bool
	now              func() time.Time
	logger           *slog.Logger
}

// NewStore builds the booking store. events may be nil.
func NewStore(repo Repository, events event.Publisher, opts ...Option) Store {
	s := &store{
		repo:   repo,
		events: events,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "booking_store")
	return s
}

func (s *store) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	b := &Booking{
		ResourceID:  req.ResourceID,
		Start:       req.Start,
		End:         req.End,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   s.now(),
	}

	var err error
	if s.enforceConflicts {
		if !req.End.After(req.Start) {
			return nil, ErrInvalidTimeRange
		}
		err = s.repo.CreateIfAvailable(ctx, b)
	} else {
		err = s.repo.Create(ctx, b)
	}
	if err != nil {
		if errors.Is(err, ErrTimeConflict) {
			s.logger.InfoContext(ctx, "booking rejected: time conflict",
				"resource_id", req.ResourceID,
				"start", req.Start,
				"end", req.End,
			)
			return nil, err
		}
		return nil, fmt.Errorf("create booking failed: %w", err)
	}

	s.logger.InfoContext(ctx, "booking created",
		"booking_id", b.ID,
		"resource_id", b.ResourceID,
		"start", b.Start,
		"end", b.End,
	)
	s.publish(event.ActionCreated, b.ID, true)
	return b, nil
}

func (s *store) Delete(ctx context.Context, id int64) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}

	s.logger.InfoContext(ctx, "booking deleted", "booking_id", id, "found", found)
	// Subscribers are notified even when nothing was removed.
	s.publish(event.ActionDeleted, id, found)
	return nil
}

func (s *store) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *store) List(ctx context.Context, filter Filter) ([]*Booking, error) {
	if filter.Upcoming {
		if now := s.now(); filter.From.Before(now) {
			filter.From = now
		}
		filter.Upcoming = false
	}

	bookings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	return bookings, nil
}

func (s *store) CheckAvailability(ctx context.Context, resourceID int64, start, end time.Time) <-chan bool {
	result := make(chan bool, 1)
	go func() {
		defer close(result)
		ok, err := s.IsAvailable(ctx, resourceID, start, end)
		if err != nil {
			// Report unavailable rather than leave the caller without an answer.
			s.logger.WarnContext(ctx, "availability check failed", "resource_id", resourceID, "error", err)
			ok = false
		}
		result <- ok
	}()
	return result
}

func (s *store) IsAvailable(ctx context.Context, resourceID int64, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, nil
	}

	hasOverlap, err := s.repo.HasOverlap(ctx, resourceID, start, end)
	if err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return !hasOverlap, nil
}

func (s *store) FreeSlots(ctx context.Context, resourceID int64, day time.Time, opening, closing string) ([]TimeSlot, error) {
	bookings, err := s.repo.List(ctx, Filter{ResourceID: resourceID})
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	return CalculateAvailability(day, opening, closing, bookings)
}

func (s *store) publish(action event.Action, id int64, found bool) {
	if s.events == nil {
		return
	}
	s.events.Publish(event.New(event.EntityBooking, action, id, found, s.now()))
}
