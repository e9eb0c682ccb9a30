package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/karirconnect/backoffice/internal/company/models"
	"go.uber.org/zap"
)

// SessionCookie carries the token for browser requests.
const SessionCookie = "session"

type contextKey string

const userContextKey contextKey = "user"

// UserLookup loads the user a token refers to.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// WithPrincipal stores the signed-in user in ctx.
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// PrincipalFromContext returns the signed-in user, or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// HTTPMiddleware resolves the principal of every request. A missing, invalid
// or expired token and an unknown user all leave the request anonymous; the
// Guard on each route decides what anonymous callers get.
func HTTPMiddleware(next http.Handler, jwtSecret string, users UserLookup, logger *zap.Logger) http.Handler {
	logger = logger.Named("auth")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := ParseToken(tokenString, jwtSecret)
		if err != nil {
			logger.Debug("rejected token", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		user, err := users.GetUser(r.Context(), userID)
		if err != nil {
			logger.Warn("token user not found", zap.Uint("user_id", userID), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
	})
}

// extractToken reads a Bearer token from the Authorization header, falling
// back to the session cookie.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
