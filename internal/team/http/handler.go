package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/league-admin-backend/internal/auth"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/response"
	"github.com/nekogravitycat/league-admin-backend/internal/team"
)

type TeamHandler struct {
	service team.Service
}

func NewHandler(service team.Service) *TeamHandler {
	return &TeamHandler{service: service}
}

// List returns teams, optionally narrowed to one league.
func (h *TeamHandler) List(c *gin.Context) {
	var q ListTeamsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	teams, total, err := h.service.List(c.Request.Context(), team.TeamFilter{
		LeagueID: q.LeagueID,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TeamResponse, len(teams))
	for i, t := range teams {
		items[i] = NewTeamResponse(t)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total).WithEmptyMessage("No teams found"))
}

// Transfer moves a team into another league of the same sport.
func (h *TeamHandler) Transfer(c *gin.Context) {
	var uri TeamURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid team id"})
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	t, err := h.service.Transfer(c.Request.Context(), uri.ID, req.LeagueID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTeamResponse(t))
}

func (h *TeamHandler) GetViewMode(c *gin.Context) {
	mode := h.service.ViewMode(c.Request.Context(), auth.GetUserID(c))
	c.JSON(http.StatusOK, ViewModeResponse{Mode: string(mode)})
}

func (h *TeamHandler) SetViewMode(c *gin.Context) {
	var req ViewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.SetViewMode(c.Request.Context(), auth.GetUserID(c), team.ViewMode(req.Mode)); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewModeResponse{Mode: req.Mode})
}
