package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey int

const (
	uidKey contextKey = iota
	emailKey
)

// UIDFromContext extracts the verified auth uid from the request context.
func UIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(uidKey).(string); ok {
		return v
	}
	return ""
}

// EmailFromContext extracts the verified email from the request context.
func EmailFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(emailKey).(string); ok {
		return v
	}
	return ""
}

// WithIdentity returns a context carrying a verified identity. Exposed
// for handler tests.
func WithIdentity(ctx context.Context, uid, email string) context.Context {
	ctx = context.WithValue(ctx, uidKey, uid)
	return context.WithValue(ctx, emailKey, email)
}

// Middleware verifies the Authorization bearer token and stores the
// identity in the request context. Requests without a valid token get
// 401.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "Unauthorized: No token provided")
				return
			}

			claims, err := VerifyToken(token, secret)
			if err != nil {
				unauthorized(w, "Unauthorized: Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.UID, claims.Email)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
}
