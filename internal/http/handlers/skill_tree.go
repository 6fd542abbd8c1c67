package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/services"
)

type SkillTreeHandler struct {
	skillTrees services.SkillTreeService
}

func NewSkillTreeHandler(skillTrees services.SkillTreeService) *SkillTreeHandler {
	return &SkillTreeHandler{skillTrees: skillTrees}
}

// GET /api/days/:day/skill-trees
func (h *SkillTreeHandler) GetDay(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	day, ok := dayParam(c)
	if !ok {
		return
	}
	trees, err := h.skillTrees.GetDay(c.Request.Context(), userID, day)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"day": day, "skill_trees": trees})
}

// POST /api/days/:day/skill-trees/:category/tasks/:taskId/toggle
func (h *SkillTreeHandler) ToggleTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	day, ok := dayParam(c)
	if !ok {
		return
	}
	key := types.SkillTreeKey{
		UserID:   userID,
		Day:      day,
		Category: types.Category(strings.ToLower(strings.TrimSpace(c.Param("category")))),
	}
	tree, err := h.skillTrees.ToggleTask(c.Request.Context(), key, c.Param("taskId"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill_tree": tree})
}
