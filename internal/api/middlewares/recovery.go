package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				zerolog.Ctx(r.Context()).Error().
					Interface("panic", err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				// Don't expose internal errors to client
				apperr.Write(w, r, apperr.Problem{Status: http.StatusInternalServerError, Code: "internal"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
