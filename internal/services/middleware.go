package services

import (
	"net/http"
	"strings"
)

// ErrorWriter renders a service error onto a response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireAdmin authenticates the request and stores its Session in the context.
func RequireAdmin(auth *AuthService, fail ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				fail(w, r, UnauthorizedError("Access denied. No token provided."))
				return
			}

			session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
