package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/utils"
)

// RequireRoles aborts unless the authenticated role is one of the allowed
// roles. Admin always passes.
func RequireRoles(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			utils.RespondAppError(c, utils.AuthorizationError("no role in request context"))
			c.Abort()
			return
		}

		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}

		utils.RespondAppError(c, utils.AuthorizationError("insufficient permissions"))
		c.Abort()
	}
}
