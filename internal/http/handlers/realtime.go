package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
)

type RealtimeHandler struct {
	log    *logger.Logger
	hub    *realtime.SSEHub
	center *realtime.Center
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, center *realtime.Center) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub, center: center}
}

// GET /api/sse/stream
// Every connection of a user joins the user's channel; tabs are independent
// clients.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.log.Debug("SSE stream open", "user_id", userID, "sse_client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.hub.CloseClient(client)
}

// GET /api/notifications
func (h *RealtimeHandler) Notifications(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"notifications": h.center.Recent(userID)})
}
