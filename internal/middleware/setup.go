package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

// SetupChecker reports whether no account exists yet.
type SetupChecker interface {
	NeedsSetup(ctx context.Context) (bool, error)
}

// AdminUnlessSetup lets anyone through while the first account has not been
// created, and requires an admin token afterwards.
func AdminUnlessSetup(setup SetupChecker, validator TokenValidator) gin.HandlerFunc {
	admins := map[models.UserRole]struct{}{models.RoleAdmin: {}}
	return func(c *gin.Context) {
		needsSetup, err := setup.NeedsSetup(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if needsSetup {
			c.Next()
			return
		}
		if authenticate(c, validator) && authorize(c, admins) {
			c.Next()
		}
	}
}
