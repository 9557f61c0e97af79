// Package auth guards the dashboard endpoints with a bearer-token role
// check. Only roles trusted to read aggregates get through; everything
// else about user management lives in the identity collaborator.
package auth

import (
	"context"
	"net/http"
	"strings"

	"comptrack/internal/domain"
	"comptrack/internal/jwttoken"
	dErrors "comptrack/pkg/domain-errors"
	"comptrack/pkg/platform/httputil"
)

// Validator validates a bearer token and returns its claims.
type Validator interface {
	Validate(tokenString string) (*jwttoken.Claims, error)
}

type roleKey struct{}
type userIDKey struct{}

// Role returns the authenticated role from the context.
func Role(ctx context.Context) domain.Role {
	role, _ := ctx.Value(roleKey{}).(domain.Role)
	return role
}

// UserID returns the authenticated user ID from the context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// WithIdentity injects an identity into the context. Exported for tests.
func WithIdentity(ctx context.Context, userID string, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	return context.WithValue(ctx, roleKey{}, role)
}

// RequireRoles validates the Authorization header and rejects requests
// whose role is not in the allowed set.
func RequireRoles(validator Validator, allowed ...domain.Role) func(http.Handler) http.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			role := domain.Role(claims.Role)
			if _, ok := allowedSet[role]; !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "role not permitted"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.UserID, role)))
		})
	}
}
