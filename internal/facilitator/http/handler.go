package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/league-admin-backend/internal/facilitator"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/response"
)

type FacilitatorHandler struct {
	service facilitator.Service
}

func NewHandler(service facilitator.Service) *FacilitatorHandler {
	return &FacilitatorHandler{service: service}
}

// Assign spreads the active facilitators over a league's tiers in round-robin order.
func (h *FacilitatorHandler) Assign(c *gin.Context) {
	var uri LeagueURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid league id"})
		return
	}

	assignments, err := h.service.Assign(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAssignResponse(uri.ID, assignments))
}
