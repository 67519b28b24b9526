package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating admin tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*AdminClaims, error)
}

// AdminClaims represents the claims we expect from the token validator.
type AdminClaims struct {
	Subject string
	Role    string
}

type contextKeyAdminSubject struct{}

// ContextKeyAdminSubject is exported for use in handlers.
var ContextKeyAdminSubject = contextKeyAdminSubject{}

// GetAdminSubject retrieves the authenticated admin subject from the context.
func GetAdminSubject(ctx context.Context) string {
	subject, ok := ctx.Value(ContextKeyAdminSubject).(string)
	if !ok {
		return ""
	}
	return subject
}

// RequireAdmin guards catalog/directory mutation endpoints with a Bearer
// token check. Read paths never pass through this.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized admin access - invalid token",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				unauthorized(w, "invalid or expired token")
				return
			}
			if claims.Role != "admin" {
				unauthorized(w, "insufficient role")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdminSubject, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
