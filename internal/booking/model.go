package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidInput     = apperror.New(http.StatusBadRequest, "invalid input parameters")
)

// Booking reserves one resource for the half-open interval [Start, End).
// ResourceID is not checked against the resource catalog.
type Booking struct {
	ID          int64
	ResourceID  int64
	Start       time.Time
	End         time.Time
	Title       string
	Description string
	CreatedAt   time.Time
}

// Filter narrows List results. The zero value lists everything.
// From and To bound the booking's start: From <= Start < To. A zero bound
// is open.
type Filter struct {
	ResourceID int64
	From       time.Time
	To         time.Time
	// Upcoming keeps bookings starting at or after the store's current time.
	Upcoming bool
}

func (f Filter) matches(b *Booking) bool {
	if f.ResourceID != 0 && b.ResourceID != f.ResourceID {
		return false
	}
	if !f.From.IsZero() && b.Start.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !b.Start.Before(f.To) {
		return false
	}
	return true
}

// TimeSlot is a free interval returned by availability queries.
type TimeSlot struct {
	StartTime time.Time
	EndTime   time.Time
}

// Overlaps reports whether [start, end) intersects b's interval.
// Touching endpoints do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}

func (b *Booking) clone() *Booking {
	cp := *b
	return &cp
}
