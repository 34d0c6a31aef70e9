// Package middleware provides HTTP middleware for the agreement engine.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/lettora/lettora/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID tags every request with an ID for log correlation. An ID
// supplied by the upstream gateway is trusted and echoed back; otherwise a
// fresh one is minted. Request logs and error responses carry this ID, so an
// agency's support ticket can be matched to the exact generation attempt.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = mintRequestID()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// mintRequestID returns 16 random bytes hex-encoded (32 chars).
func mintRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
