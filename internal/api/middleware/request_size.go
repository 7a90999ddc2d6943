package middleware

import (
	"net/http"
)

const (
	// DefaultMaxBodySize caps ordinary JSON request bodies at 1MB.
	DefaultMaxBodySize int64 = 1 << 20

	// BulkMaxBodySize caps bulk operations (order creation with many lines,
	// seed imports) at 5MB.
	BulkMaxBodySize int64 = 5 << 20
)

// RequestSize limits incoming request bodies via http.MaxBytesReader. Reads
// past the limit fail and the JSON decoder surfaces a 400.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
