package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/league-admin-backend/internal/mail"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/response"
)

type MailHandler struct {
	service mail.Service
}

func NewHandler(service mail.Service) *MailHandler {
	return &MailHandler{service: service}
}

// SendBulk emails a sanitised message to a recipient list or a whole league.
func (h *MailHandler) SendBulk(c *gin.Context) {
	var req BulkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	res, err := h.service.SendBulk(c.Request.Context(), mail.BulkRequest{
		Subject:    req.Subject,
		Body:       req.Body,
		Recipients: req.Recipients,
		LeagueID:   req.LeagueID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBulkEmailResponse(res))
}
