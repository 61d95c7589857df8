package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers resource-related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/resources")
	{
		group.GET("", h.List)          // List resources
		group.GET("/count", h.Count)   // Total number of resources
		group.GET("/:id", h.Get)       // Get resource details
		group.POST("", h.Create)       // Create resource
		group.DELETE("/:id", h.Delete) // Delete resource
	}
}
