package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewfit/fitcircle/services"
	"github.com/crewfit/fitcircle/utils"
)

// RequireOperation gates a route behind the authorization policy. The
// capability check happens here, once, before the handler runs any
// side effect; handlers never re-check roles inline.
func RequireOperation(operation string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := ctx.GetString(ContextRoleKey)
		if !services.Allowed(role, operation) {
			utils.Error(ctx, http.StatusForbidden, 40301, "operation not permitted for role")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
