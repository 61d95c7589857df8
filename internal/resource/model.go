package resource

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidKind     = apperror.New(http.StatusBadRequest, "kind must be room or equipment")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "capacity must be a positive integer")
)

// UnknownResourceName is shown for bookings whose resource no longer exists.
const UnknownResourceName = "Unknown resource"

// Kind distinguishes rooms from equipment.
type Kind string

const (
	KindRoom      Kind = "room"
	KindEquipment Kind = "equipment"
)

// ValidKinds lists every accepted Kind.
var ValidKinds = []Kind{KindRoom, KindEquipment}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, v := range ValidKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Resource represents a bookable unit (e.g., Room A, Projector).
type Resource struct {
	ID        int64
	Name      string
	Kind      Kind
	Capacity  *int // rooms only
	CreatedAt time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Kind Kind
}

func (r *Resource) clone() *Resource {
	cp := *r
	if r.Capacity != nil {
		c := *r.Capacity
		cp.Capacity = &c
	}
	return &cp
}
