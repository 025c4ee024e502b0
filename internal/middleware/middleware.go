// Package middleware carries the cross-cutting HTTP wrappers.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/teamyukt/honeynet/pkg/utils"
)

// CORS allows browser-based dashboards to talk to the API.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, x-api-key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// APIKey rejects requests whose x-api-key header does not match the
// configured key. An empty configured key disables the check.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" {
				got := r.Header.Get("x-api-key")
				if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
					utils.RespondError(w, http.StatusUnauthorized, "invalid or missing api key")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
