package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/services"
)

type AuthMiddleware struct {
	log     *logger.Logger
	gateway services.IdentityGateway
}

func NewAuthMiddleware(log *logger.Logger, gateway services.IdentityGateway) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), gateway: gateway}
}

// RequireAuth resolves the bearer token into the request's identity. The
// token may also come from the "token" query parameter, since EventSource
// cannot set headers.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid token")
			return
		}
		id, err := am.gateway.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			response.AbortWithError(c, http.StatusUnauthorized, "unauthenticated", "authentication failed")
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			TokenString: tokenString,
			UserID:      id.UserID,
			Email:       id.Email,
			Role:        id.Role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.Role != types.RoleAdmin {
			am.log.Warn("admin route denied", "user_id", ctxutil.UserID(c.Request.Context()), "path", c.FullPath())
			response.AbortWithError(c, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}
