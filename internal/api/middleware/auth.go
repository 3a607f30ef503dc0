package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Project-Sylos/Folio/internal/types"
	log "github.com/sirupsen/logrus"
)

// UnauthorizedMessage is the error payload of a rejected request
const UnauthorizedMessage = "Unauthorized access"

// BearerAuth rejects requests whose Authorization header does not carry
// token. An empty token disables the check.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bt := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(bt), []byte(token)) != 1 {
				log.Debugf("[api auth] rejected %s %s", r.Method, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(types.ErrorResponse{Error: UnauthorizedMessage})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
