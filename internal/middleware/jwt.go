package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/logger"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenValidator turns a bearer token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, validator) {
			return
		}
		c.Next()
	}
}

// authenticate stores the caller's claims or aborts with 401.
func authenticate(c *gin.Context, validator TokenValidator) bool {
	token, ok := bearerToken(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Authentication required"))
		c.Abort()
		return false
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		response.Error(c, err)
		c.Abort()
		return false
	}
	setClaims(c, claims)
	return true
}

// OptionalJWT attaches claims when a valid token is present but never blocks.
func OptionalJWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := validator.ValidateToken(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// Claims returns the authenticated caller, if any.
func Claims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

func setClaims(c *gin.Context, claims *models.JWTClaims) {
	c.Set(ContextUserKey, claims)
	c.Set(logger.ContextUserIDKey, claims.UserID)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
