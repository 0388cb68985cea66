package middleware

import (
	"net/http"

	"blackvant/internal/auth"
)

// InternalKey guards the accrual ingress. The job presents the shared key
// in X-Internal-Key; only its bcrypt hash is configured on the server.
func InternalKey(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Internal-Key")
			if keyHash == "" || key == "" || !auth.CheckInternalKey(keyHash, key) {
				http.Error(w, "invalid internal key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
