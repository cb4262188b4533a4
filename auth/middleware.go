package auth

import (
	"net/http"
)

// Middleware wraps an http.Handler with bearer token authentication.
// Validates the Authorization header and propagates identity via the
// request context. If authenticator is nil, requests pass through
// without auth.
func Middleware(authenticator Authenticator, next http.Handler) http.Handler {
	if authenticator == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, ErrTokenIsEmpty.Error(), http.StatusUnauthorized)
			return
		}

		token, err := TokenFromAuthorizationHeader(header)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		identity, err := authenticator.Authenticate(r.Context(), token)
		if err != nil {
			http.Error(w, ErrUnauthenticated.Error(), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}
