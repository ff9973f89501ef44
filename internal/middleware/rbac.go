package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

// RequireRoles lets the request through only for the listed roles. Admins are always allowed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles)+1)
	allowed[models.RoleAdmin] = struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if !authorize(c, allowed) {
			return
		}
		c.Next()
	}
}

func authorize(c *gin.Context, allowed map[models.UserRole]struct{}) bool {
	claims, ok := Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return false
	}
	if _, ok := allowed[claims.Role]; !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Insufficient permissions"))
		c.Abort()
		return false
	}
	return true
}

// Writers is staff and above.
func Writers() gin.HandlerFunc {
	return RequireRoles(models.RoleStaff)
}

// Readers is any authenticated role.
func Readers() gin.HandlerFunc {
	return RequireRoles(models.RoleStaff, models.RoleViewer)
}
