package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *MailHandler, authMiddleware gin.HandlerFunc, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/admin/emails")
	// === Admin Routes ===
	group.Use(authMiddleware, adminMiddleware)
	{
		group.POST("/bulk", h.SendBulk) // Send one message to many users
	}
}
