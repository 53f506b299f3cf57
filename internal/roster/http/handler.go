package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/league-admin-backend/internal/auth"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/response"
	"github.com/nekogravitycat/league-admin-backend/internal/roster"
)

type RosterHandler struct {
	sessions *roster.Manager
}

func NewRosterHandler(sessions *roster.Manager) *RosterHandler {
	return &RosterHandler{sessions: sessions}
}

// session resolves the caller's roster session, writing the error response itself on failure.
func (h *RosterHandler) session(c *gin.Context) (*roster.Session, bool) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	s, err := h.sessions.Session(c.Request.Context(), userID)
	if s == nil {
		response.Error(c, err)
		return nil, false
	}
	if err != nil && isClientError(err) {
		response.Error(c, err)
		return nil, false
	}
	return s, true
}

// respond renders the session after a mutation. Listing failures are not
// HTTP errors: they surface as notices while the previous page stays visible.
func (h *RosterHandler) respond(c *gin.Context, s *roster.Session, status int, err error) {
	if err != nil && isClientError(err) {
		response.Error(c, err)
		return
	}
	c.JSON(status, NewRosterResponse(s.Snapshot(), s.Query()))
}

func isClientError(err error) bool {
	var appErr *apperror.AppError
	var fieldErr *apperror.FieldError
	return errors.As(err, &appErr) || errors.As(err, &fieldErr)
}

// Get returns the current roster page, loading it on first access.
func (h *RosterHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, http.StatusOK, nil)
}

// Search records the search box contents. The reload follows after the debounce window.
func (h *RosterHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	s.SetSearchTerm(c.Request.Context(), req.Term)
	h.respond(c, s, http.StatusAccepted, nil)
}

func (h *RosterHandler) Sort(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.Sort(c.Request.Context(), roster.SortField(req.Field))
	h.respond(c, s, http.StatusOK, err)
}

func (h *RosterHandler) ToggleFilter(c *gin.Context) {
	var uri FilterKeyURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter key"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.ToggleFilter(c.Request.Context(), roster.FilterKey(uri.Key))
	h.respond(c, s, http.StatusOK, err)
}

func (h *RosterHandler) ToggleSportInLeague(c *gin.Context) {
	var uri SportURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sport id"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.ToggleSportInLeague(c.Request.Context(), uri.SportID)
	h.respond(c, s, http.StatusOK, err)
}

func (h *RosterHandler) ToggleSportWithSkill(c *gin.Context) {
	var uri SportURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sport id"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.ToggleSportWithSkill(c.Request.Context(), uri.SportID)
	h.respond(c, s, http.StatusOK, err)
}

func (h *RosterHandler) ClearFilters(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.ClearFilters(c.Request.Context())
	h.respond(c, s, http.StatusOK, err)
}

func (h *RosterHandler) ChangePage(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.ChangePage(c.Request.Context(), req.Page)
	h.respond(c, s, http.StatusOK, err)
}

func (h *RosterHandler) ChangePageSize(c *gin.Context) {
	var req PageSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.ChangePageSize(c.Request.Context(), req.PageSize)
	h.respond(c, s, http.StatusOK, err)
}

func (h *RosterHandler) Refresh(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.Refresh(c.Request.Context())
	h.respond(c, s, http.StatusOK, err)
}

// Export streams every user matching the current search and filters as CSV.
func (h *RosterHandler) Export(c *gin.Context) {
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	columns, err := roster.ResolveColumns(q.Columns)
	if err != nil {
		response.Error(c, err)
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	users, err := s.ExportAll(c.Request.Context())
	if err != nil {
		if isClientError(err) {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load users"})
		return
	}

	filename := fmt.Sprintf("users-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := roster.WriteCSV(c.Writer, users, columns); err != nil {
		_ = c.Error(err)
	}
}
