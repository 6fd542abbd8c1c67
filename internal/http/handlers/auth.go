package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
	"github.com/yungbote/journey-backend/internal/services"
)

type AuthHandler struct {
	gateway services.IdentityGateway
}

func NewAuthHandler(gateway services.IdentityGateway) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

func sessionPayload(s *services.Session) gin.H {
	return gin.H{
		"access_token":  s.AccessToken,
		"refresh_token": s.RefreshToken,
		"expires_in":    s.ExpiresIn,
		"user": gin.H{
			"id":    s.Identity.UserID,
			"email": s.Identity.Email,
			"role":  s.Identity.Role,
		},
	}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := ah.gateway.SignUp(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, sessionPayload(s))
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := ah.gateway.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sessionPayload(s))
}

// POST /api/refresh
// body: { "refresh_token": "..." }
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := ah.gateway.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sessionPayload(s))
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.TokenString == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthenticated", "not authenticated")
		return
	}
	if err := ah.gateway.SignOut(c.Request.Context(), rd.TokenString); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
