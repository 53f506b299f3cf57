package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *RegistrationHandler, authMiddleware gin.HandlerFunc, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/admin/registrations")

	// === Admin Routes ===
	group.Use(authMiddleware, adminMiddleware)
	{
		group.GET("/feed", h.Feed)     // Latest registrations
		group.GET("/stream", h.Stream) // Websocket push of new registrations
	}
}
