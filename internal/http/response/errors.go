package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/platform/apierr"
)

// RespondErr renders err with the status its domain code maps to. Server-side
// failures keep their cause on the gin context for the request log.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.FromError(err)
	if ae.Status >= http.StatusInternalServerError && err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypePrivate)
	}
	RespondError(c, ae.Status, ae.Code, ae.Error())
}
