package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/iho/txengine/internal/adapter/http/dto"
)

// Recovery turns a handler panic into a 500 JSON error. When it runs inside
// LoggingMiddleware the panic is logged through the request logger, so the
// entry carries request_id and any fields the handler had attached.
func Recovery(fallback zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				log := zerolog.Ctx(r.Context())
				if log.GetLevel() == zerolog.Disabled {
					log = &fallback
				}
				log.Error().
					Str("panic", fmt.Sprint(rvr)).
					Bytes("stack", debug.Stack()).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("panic recovered")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(dto.ErrorResponse{
					Error: "internal server error",
					Code:  "internal",
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
