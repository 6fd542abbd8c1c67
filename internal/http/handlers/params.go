package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
)

func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthenticated", "not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func dayParam(c *gin.Context) (int, bool) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Sprintf("invalid day %q", c.Param("day")))
		return 0, false
	}
	return day, true
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
