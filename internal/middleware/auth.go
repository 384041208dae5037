package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/fridgeshare/internal/auth"
	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// UserKey is the context key for the authenticated *models.User.
const UserKey contextKey = "user"

// UserLookup resolves token subjects to users.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// WithUser returns a context carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// CurrentUser extracts the authenticated user from the context.
// Returns nil if not found.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if user := CurrentUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, loads the
// user it names and adds that user to the request context.
func RequireAuth(jwtManager *auth.JWTManager, users UserLookup) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			user, err := users.GetUser(ctx, claims.UserID)
			if errors.Is(err, storage.ErrNotFound) {
				return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("unknown user %s", claims.UserID))
			}
			if err != nil {
				return nil, connect.NewError(connect.CodeInternal, err)
			}

			return next(WithUser(ctx, user), req)
		}
	}
}
