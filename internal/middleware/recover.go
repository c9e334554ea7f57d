package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/GovarthanahariN/CartProjectBE/internal/http/respond"
	"github.com/GovarthanahariN/CartProjectBE/internal/logging"
)

// Recover turns a handler panic into a JSON 500. The stack is logged, never
// sent to the client.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("handler panicked")
			respond.Error(w, http.StatusInternalServerError, "Something went wrong!")
		}()
		next.ServeHTTP(w, r)
	})
}
