package middleware

import (
	"context"
	"net/http"
	"strings"

	"attendance.service/internal/api/handler"
	"attendance.service/internal/auth"
	"attendance.service/internal/core/model"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserFinder loads the user a token was issued to.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and stores
// the caller's identity in the request context. Tokens of deleted users are rejected.
func Authenticate(tokens TokenVerifier, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				handler.WriteError(w, r, model.ErrUnauthenticated)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				handler.WriteError(w, r, err)
				return
			}

			u, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				if model.KindOf(err) == model.KindNotFound {
					err = model.ErrInvalidToken
				}
				handler.WriteError(w, r, err)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				UserID:     u.ID,
				Role:       u.Role,
				EmployeeID: u.EmployeeID,
			})
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", u.ID))
			zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", u.ID)
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose identity is not allowed to act as role.
// It must run after Authenticate.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				handler.WriteError(w, r, model.ErrUnauthenticated)
				return
			}
			if !auth.Allowed(id, role) {
				handler.WriteError(w, r, model.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}
