package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/modules/auth"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserResolver turns credentials from the Authorization header into a user.
type UserResolver interface {
	UserByToken(ctx context.Context, raw string) (*domain.User, error)
	UserByJWT(ctx context.Context, raw string) (*domain.User, error)
}

// Authenticate resolves "Authorization: Token <key>" or "Bearer <jwt>" and
// stores user_id in the context. Requests without the header pass through
// anonymously; bad credentials are rejected.
func Authenticate(resolver UserResolver, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}

		scheme, credential, ok := strings.Cut(header, " ")
		credential = strings.TrimSpace(credential)
		if !ok || credential == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Token <key>' or 'Bearer <jwt>'")
			return
		}

		var (
			user *domain.User
			err  error
		)
		switch strings.ToLower(scheme) {
		case "token":
			user, err = resolver.UserByToken(c.Request.Context(), credential)
		case "bearer":
			user, err = resolver.UserByJWT(c.Request.Context(), credential)
		default:
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Token <key>' or 'Bearer <jwt>'")
			return
		}

		switch {
		case err == nil:
		case errors.Is(err, auth.ErrInactiveUser):
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Account is not active")
			return
		case errors.Is(err, auth.ErrUnauthorized):
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		default:
			if log != nil {
				log.Errorw("failed to resolve credentials", "error", err)
			}
			response.Abort(c, http.StatusInternalServerError, response.CodeInternal, "Internal error")
			return
		}

		c.Set("user_id", user.ID)
		c.Set("is_staff", user.IsStaff)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetInt64("user_id") == 0 {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}
