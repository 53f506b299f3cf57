package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *TeamHandler, authMiddleware gin.HandlerFunc, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/admin/teams")
	// === Admin Routes ===
	group.Use(authMiddleware, adminMiddleware)
	{
		group.GET("", h.List)                   // List teams, optionally by league
		group.GET("/view-mode", h.GetViewMode)  // Saved card/table preference
		group.PUT("/view-mode", h.SetViewMode)  // Save card/table preference
		group.POST("/:id/transfer", h.Transfer) // Move team to another league
	}
}
