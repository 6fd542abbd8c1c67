package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/services"
)

type AdminHandler struct {
	admin services.AdminService
}

func NewAdminHandler(admin services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// GET /api/admin/users?limit=&offset=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := h.admin.ListUsers(c.Request.Context(), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}
