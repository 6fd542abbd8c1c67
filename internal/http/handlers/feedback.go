package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/services"
)

const defaultFeedbackListLimit = 50

type FeedbackHandler struct {
	feedback services.FeedbackService
}

func NewFeedbackHandler(feedback services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// POST /api/feedback
// body: { "rating": 1..5, "comment": "..." }
func (h *FeedbackHandler) Submit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	fb, err := h.feedback.Submit(c.Request.Context(), userID, req.Rating, req.Comment)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"feedback": fb})
}

// GET /api/admin/feedback?limit=
func (h *FeedbackHandler) ListRecent(c *gin.Context) {
	rows, err := h.feedback.ListRecent(c.Request.Context(), queryInt(c, "limit", defaultFeedbackListLimit))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"feedback": rows})
}
