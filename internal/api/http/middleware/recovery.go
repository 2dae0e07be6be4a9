package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// panicBody matches the API's error response shape
type panicBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Recovery answers handler panics with a 500 INTERNAL_ERROR body.
// http.ErrAbortHandler is re-raised for net/http to abort the response.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error().
					Err(fmt.Errorf("%v", rec)).
					Str("method", r.Method).
					Str("route", routePattern(r)).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from handler panic")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(panicBody{Error: "internal server error", Code: "INTERNAL_ERROR"})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
