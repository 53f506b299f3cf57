package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *FacilitatorHandler, authMiddleware gin.HandlerFunc, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/admin/leagues")
	// === Admin Routes ===
	group.Use(authMiddleware, adminMiddleware)
	{
		group.POST("/:id/facilitators/assign", h.Assign) // Round-robin facilitators over tiers
	}
}
