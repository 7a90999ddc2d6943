package middleware

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/warebase/server/internal/api/problem"
)

// Recovery converts handler panics into 500 problem responses so a single
// bad request cannot take the process down.
func Recovery(logger zerolog.Logger, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("handler panic")
					problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Internal server error", nil, env)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
