package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me/profile
// body: any subset of { first_name, last_name, free_time, working_status, student_status, goals }
func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	var req types.UserProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	me, err := uh.userService.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PUT /api/me/interests
// body: { "interests": ["fitness", "learning"] }
func (uh *UserHandler) UpdateInterests(c *gin.Context) {
	var req struct {
		Interests []string `json:"interests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	me, err := uh.userService.UpdateInterests(c.Request.Context(), req.Interests)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
