package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/event"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/response"
)

// StreamRequest narrows the stream to one collection.
type StreamRequest struct {
	Entity string `form:"entity" binding:"omitempty,oneof=booking resource"`
}

type Handler struct {
	bus *event.Bus
}

func NewHandler(bus *event.Bus) *Handler {
	return &Handler{bus: bus}
}

// Stream pushes change notifications as server-sent events until the
// client disconnects. Each connection owns one subscription.
func (h *Handler) Stream(c *gin.Context) {
	var req StreamRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	sub := h.bus.Subscribe(0)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	// Send headers now so clients see the stream open before the first event.
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-sub.C:
			if !ok {
				return false
			}
			if req.Entity != "" && string(e.Entity) != req.Entity {
				return true
			}
			c.SSEvent(e.Type(), e)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
