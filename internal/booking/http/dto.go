package http

import (
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	resHttp "github.com/nekogravitycat/room-booking-backend/internal/resource/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
// From and To bound the start time (week view); Upcoming keeps bookings
// that have not started yet.
type ListBookingsRequest struct {
	ResourceID int64      `form:"resource_id" binding:"omitempty,min=1"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Upcoming   bool       `form:"upcoming"`
	Sort       string     `form:"sort" binding:"omitempty,oneof=start"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.From != nil && r.To != nil && !r.To.After(*r.From) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

func (r *ListBookingsRequest) Filter() booking.Filter {
	filter := booking.Filter{
		ResourceID: r.ResourceID,
		Upcoming:   r.Upcoming,
	}
	if r.From != nil {
		filter.From = *r.From
	}
	if r.To != nil {
		filter.To = *r.To
	}
	return filter
}

type BookingResponse struct {
	ID          int64               `json:"id"`
	Resource    resHttp.ResourceTag `json:"resource"`
	StartTime   time.Time           `json:"start_time"`
	EndTime     time.Time           `json:"end_time"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func NewBookingResponse(b *booking.Booking, resourceName string) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		Resource:    resHttp.ResourceTag{ID: b.ResourceID, Name: resourceName},
		StartTime:   b.Start,
		EndTime:     b.End,
		Title:       b.Title,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
	}
}

type CreateBookingRequest struct {
	ResourceID  int64     `json:"resource_id" binding:"required,min=1"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Title       string    `json:"title" binding:"required,min=3,max=200"`
	Description string    `json:"description" binding:"max=2000"`
}

// Validate performs custom validation for CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	if !r.EndTime.After(r.StartTime) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

// AvailabilityRequest is the query of GET /availability.
type AvailabilityRequest struct {
	ResourceID int64     `form:"resource_id" binding:"required,min=1"`
	StartTime  time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime    time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

// FreeSlotsRequest is the query of GET /resources/:id/free-slots.
type FreeSlotsRequest struct {
	Date  time.Time `form:"date" binding:"required" time_format:"2006-01-02" time_utc:"1"`
	Open  string    `form:"open"`
	Close string    `form:"close"`
}

type TimeSlotResponse struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
