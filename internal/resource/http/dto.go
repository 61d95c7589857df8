package http

import (
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/resource"
)

// ListResourcesRequest defines query parameters for listing resources.
type ListResourcesRequest struct {
	Kind string `form:"kind" binding:"omitempty,resource_kind"`
}

type ResourceResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Capacity  *int      `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      string(r.Kind),
		Capacity:  r.Capacity,
		CreatedAt: r.CreatedAt,
	}
}

// ResourceTag is the short form embedded in other responses.
type ResourceTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreateRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Kind     string `json:"kind" binding:"omitempty,resource_kind"`
	Capacity *int   `json:"capacity" binding:"omitempty,min=1"`
}

type CountResponse struct {
	Total int `json:"total"`
}
