package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

// maxInteractionBytes bounds an inbound interaction payload.
const maxInteractionBytes = 1 << 20

// SignatureVerifier authenticates a signed request, leaving its body readable.
type SignatureVerifier interface {
	Verify(r *http.Request) error
}

// VerifySignature rejects unsigned or tampered requests with 401 before
// any handler sees them.
func VerifySignature(v SignatureVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxInteractionBytes)
			if err := v.Verify(r); err != nil {
				log.Warn("interaction signature rejected",
					logger.String("remote_ip", r.RemoteAddr),
					logger.Error(err))
				http.Error(w, "invalid request signature", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
