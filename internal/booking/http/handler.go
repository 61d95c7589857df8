package http

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/room-booking-backend/internal/resource"
)

const (
	defaultOpen  = "08:00"
	defaultClose = "20:00"
)

type Handler struct {
	service    booking.Store
	resService resource.Store
}

func NewHandler(service booking.Store, resService resource.Store) *Handler {
	return &Handler{
		service:    service,
		resService: resService,
	}
}

func (h *Handler) toResponse(c *gin.Context, b *booking.Booking) BookingResponse {
	return NewBookingResponse(b, h.resService.DisplayName(c.Request.Context(), b.ResourceID))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	bookings, err := h.service.List(c.Request.Context(), req.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}

	// The store keeps insertion order; the calendar wants chronological.
	if req.Sort == "start" {
		sort.SliceStable(bookings, func(i, j int) bool {
			return bookings[i].Start.Before(bookings[j].Start)
		})
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = h.toResponse(c, b)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// Create validates like the booking form does: the interval must be
// non-empty and the resource free. Under the advisory store two concurrent
// requests can still both pass; conflict enforcement closes that gap.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	available, err := h.service.IsAvailable(ctx, body.ResourceID, body.StartTime, body.EndTime)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !available {
		response.Error(c, booking.ErrTimeConflict)
		return
	}

	req := booking.CreateRequest{
		ResourceID:  body.ResourceID,
		Start:       body.StartTime,
		End:         body.EndTime,
		Title:       body.Title,
		Description: body.Description,
	}

	b, err := h.service.Create(ctx, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(c, b))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(c, b))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	select {
	case available := <-h.service.CheckAvailability(c.Request.Context(), req.ResourceID, req.StartTime, req.EndTime):
		c.JSON(http.StatusOK, AvailabilityResponse{Available: available})
	case <-c.Request.Context().Done():
		// Client went away; nothing to answer.
	}
}

func (h *Handler) FreeSlots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var req FreeSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if req.Open == "" {
		req.Open = defaultOpen
	}
	if req.Close == "" {
		req.Close = defaultClose
	}

	slots, err := h.service.FreeSlots(c.Request.Context(), uri.ID, req.Date, req.Open, req.Close)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TimeSlotResponse, len(slots))
	for i, s := range slots {
		items[i] = TimeSlotResponse{StartTime: s.StartTime, EndTime: s.EndTime}
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}
