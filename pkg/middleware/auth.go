package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/pkg/auth"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

type claimsKey struct{}

// ClaimsFromCtx returns the verified claims attached by RequireSignIn.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// UserIDFromCtx returns the authenticated user's ObjectID.
func UserIDFromCtx(ctx context.Context) (primitive.ObjectID, bool) {
	c, ok := ClaimsFromCtx(ctx)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// RequireSignIn is the first gate: it extracts the session token from the
// Authorization header (raw or "Bearer "-prefixed), verifies it, and
// attaches the claims to the request context. A failing request is answered
// with 401 and never reaches the handler.
func RequireSignIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if token == "" {
			response.Unauthorized(w, "missing token")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is the second gate and assumes RequireSignIn already ran.
// The user's role is re-resolved from storage on every request — the token
// is trusted for identity only, never for privilege.
func RequireAdmin(users repositories.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := UserIDFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "missing claims")
				return
			}

			u, err := users.FindByID(r.Context(), id)
			if err != nil {
				response.Unauthorized(w, "unknown user")
				return
			}
			if !u.IsAdmin() {
				logger.WithCtx(r.Context()).Warn("admin gate denied",
					"user_id", u.ID.Hex(), "role", string(u.Role))
				response.Unauthorized(w, "admin privilege required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
