package middleware

import (
	"net/http"

	"github.com/missionconf/server/internal/api/respond"
)

// DefaultMaxBodySize is 1MB, the largest JSON body the forms accept.
const DefaultMaxBodySize int64 = 1 << 20

const bodyTooLargeMessage = "Request body too large"

// RequestSize limits the size of incoming request bodies.
//
// A declared Content-Length over the limit is answered here. Otherwise the
// body is wrapped with http.MaxBytesReader; handlers see a
// *http.MaxBytesError from the decoder once the limit is crossed and answer
// 413 Payload Too Large.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respond.Error(w, r, http.StatusRequestEntityTooLarge, bodyTooLargeMessage, nil, "")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PublicRequestSize limits request bodies to 1MB for the public form endpoints.
func PublicRequestSize() func(http.Handler) http.Handler {
	return RequestSize(DefaultMaxBodySize)
}
