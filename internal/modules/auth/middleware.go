package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// RequireToken rejects requests without a valid bearer token with 401.
func RequireToken(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			subject, err := svc.Authenticate(strings.TrimSpace(token))
			if err != nil {
				respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, subject)))
		})
	}
}

// Subject returns the authenticated account id stored by RequireToken.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxKey{}).(string)
	return s, ok
}
