package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/internal/access"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/response"
)

// Authorize allows the request only when the caller's role may perform op.
func Authorize(op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(ContextProfile)
		if !ok {
			response.Abort(c, apperr.Unauthenticated("missing user context"))
			return
		}
		if !access.Allowed(v.(*models.Profile).Role, op) {
			response.Abort(c, apperr.Forbidden("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// RequireVerified blocks employees whose account has not been verified.
// Other roles pass.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Profile(c)
		if p.Role == models.RoleEmployee && !p.Verified() {
			response.Abort(c, apperr.PendingApproval("your account is awaiting approval by a manager"))
			return
		}
		c.Next()
	}
}
