package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *RosterHandler, authMiddleware gin.HandlerFunc, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/admin/roster")

	// === Admin Routes ===
	group.Use(authMiddleware, adminMiddleware)
	{
		group.GET("", h.Get)                                                      // Current page and query state
		group.PUT("/search", h.Search)                                            // Update search term (debounced)
		group.POST("/sort", h.Sort)                                               // Sort by column, toggling direction
		group.POST("/filters/:key/toggle", h.ToggleFilter)                        // Flip a boolean filter
		group.POST("/sports-in-league/:sport_id/toggle", h.ToggleSportInLeague)   // Toggle a league sport
		group.POST("/sports-with-skill/:sport_id/toggle", h.ToggleSportWithSkill) // Toggle a skill sport
		group.DELETE("/filters", h.ClearFilters)                                  // Reset all filters
		group.PUT("/page", h.ChangePage)                                          // Go to page
		group.PUT("/page-size", h.ChangePageSize)                                 // Change page size
		group.POST("/refresh", h.Refresh)                                         // Reload current query
		group.GET("/export.csv", h.Export)                                        // CSV export of all matches
	}
}
