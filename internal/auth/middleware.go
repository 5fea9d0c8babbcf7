package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/domain"
	apperrors "foodhub/internal/errors"
	"foodhub/internal/httpx"
)

type Verifier interface {
	Verify(token string) (Identity, error)
}

type contextKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(Identity)
	return identity, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func Authenticate(verifier Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				httpx.WriteError(w, uuid.New().String(), apperrors.NewUnauthorizedError("missing bearer token"), logger)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				httpx.WriteError(w, uuid.New().String(), err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRoles must run after Authenticate.
func RequireRoles(logger *zap.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				httpx.WriteError(w, uuid.New().String(), apperrors.NewUnauthorizedError("not authenticated"), logger)
				return
			}
			if !identity.Role.IsAny(roles...) {
				httpx.WriteError(w, uuid.New().String(), apperrors.NewForbiddenError("role not allowed"), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
