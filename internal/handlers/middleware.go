package handlers

import (
	"context"
	"net/http"
	"strings"

	"gitlab.com/agfdbk.net/internal/config"
	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/handlers/response"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

// PermissionStaff lets a caller see staff-only feedback and manage projects
const PermissionStaff = "staff"

type ctxKey struct{}

type MiddlewareProvider struct {
	jwt    primary.JWTService
	method string
	logger primary.Logger
}

func New(jwt primary.JWTService, cfg *config.JwtConfig, logger primary.Logger) *MiddlewareProvider {
	return &MiddlewareProvider{
		jwt:    jwt,
		method: cfg.Method,
		logger: logger,
	}
}

// JWTMiddleware rejects requests without a valid bearer token and stores
// the token's claims in the request context.
func (m *MiddlewareProvider) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.WriteError(w, response.ErrorMessage{Message: "Authorization header missing", StatusCode: http.StatusUnauthorized})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		ok, err := m.jwt.VerifyTokenHMAC(r.Context(), tokenString, m.method)
		if err != nil || !ok {
			m.logger.Debug("Rejected token", "error", err)
			response.WriteServiceError(w, errs.InvalidCredentials)
			return
		}

		payload, err := m.jwt.DecodeTokenPayload(r.Context(), tokenString)
		if err != nil {
			response.WriteServiceError(w, errs.InvalidCredentials)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), payload)))
	})
}

// RequireStaff wraps a handler that only staff may call
func RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !IsStaff(r.Context()) {
			response.WriteError(w, response.ErrorMessage{Message: "staff permission required", StatusCode: http.StatusForbidden})
			return
		}
		next(w, r)
	}
}

// UserFromContext returns the caller's claims set by JWTMiddleware
func UserFromContext(ctx context.Context) (domain.AuthPayload, bool) {
	payload, ok := ctx.Value(ctxKey{}).(domain.AuthPayload)
	return payload, ok
}

func IsStaff(ctx context.Context) bool {
	payload, ok := UserFromContext(ctx)
	if !ok {
		return false
	}
	for _, p := range payload.Permission {
		if p == PermissionStaff {
			return true
		}
	}
	return false
}

// WithUser stores claims the way JWTMiddleware does
func WithUser(ctx context.Context, payload domain.AuthPayload) context.Context {
	return context.WithValue(ctx, ctxKey{}, payload)
}
