package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// GET /api/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	p, err := h.progress.GetProgress(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}

// POST /api/progress/init
func (h *ProgressHandler) InitProgress(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	p, created, err := h.progress.InitProgress(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p, "created": created})
}

// GET /api/progress/summary
func (h *ProgressHandler) GetSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	s, err := h.progress.GetSummary(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": s})
}

// POST /api/progress/days/:day/complete
func (h *ProgressHandler) CompleteDay(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	day, ok := dayParam(c)
	if !ok {
		return
	}
	p, err := h.progress.CompleteDay(c.Request.Context(), userID, day)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}
