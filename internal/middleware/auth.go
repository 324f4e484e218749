package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smartscale/portfolio-api/internal/constants"
	apierrors "github.com/smartscale/portfolio-api/internal/errors"
	"github.com/smartscale/portfolio-api/internal/models"
	"github.com/smartscale/portfolio-api/internal/services"
	"go.uber.org/zap"
)

// TokenVerifier resolves a bearer token to a live credential.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Credential, error)
}

// RequireAuth checks that the request carries a bearer token for an existing administrator
func RequireAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			apierrors.Unauthorized(c, "Access token required")
			return
		}

		credential, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidToken):
				apierrors.InvalidToken(c, "Invalid token")
			case errors.Is(err, services.ErrUserNotFound):
				apierrors.Unauthorized(c, "User not found")
			default:
				log.Error("Token verification failed", zap.Error(err))
				apierrors.InternalError(c, "")
			}
			return
		}

		// Store credential in context for easy access in handlers
		c.Set(constants.ContextKeyCredentialID, credential.ID)
		c.Set(constants.ContextKeyUsername, credential.Username)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetCredentialID retrieves the authenticated credential ID from context
func GetCredentialID(c *gin.Context) (uint64, bool) {
	id, ok := c.Value(constants.ContextKeyCredentialID).(uint64)
	return id, ok
}

// GetUsername retrieves the authenticated username from context
func GetUsername(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUsername)
}
