package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/pkg/response"
	"github.com/nekogravitycat/league-admin-backend/internal/registration"
)

type RegistrationHandler struct {
	feed     *registration.Feed
	hub      *registration.Hub
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

// NewHandler creates the feed handler. allowOrigin decides which browser
// origins may open the stream; nil accepts same-origin requests only.
func NewHandler(feed *registration.Feed, hub *registration.Hub, allowOrigin func(r *http.Request) bool, log *zap.SugaredLogger) *RegistrationHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RegistrationHandler{
		feed: feed,
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
		log: log,
	}
}

// Feed returns the latest registrations, newest first.
func (h *RegistrationHandler) Feed(c *gin.Context) {
	entries := h.feed.Snapshot()
	items := make([]registration.View, len(entries))
	for i, r := range entries {
		items[i] = registration.NewView(r)
	}

	resp := response.NewPageResponse(items, 1, h.feed.Cap(), len(items)).
		WithEmptyMessage(registration.EmptyFeedMessage)
	c.JSON(http.StatusOK, resp)
}

// Stream upgrades to a websocket that receives every new registration.
func (h *RegistrationHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debugw("registration stream upgrade failed", "error", err)
		return
	}
	h.hub.Attach(conn)
}
