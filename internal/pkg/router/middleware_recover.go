package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/gokode/internal/pkg/stacktrace"
)

// middlewareRecoverer converts a handler panic into a 500 JSON response.
// http.ErrAbortHandler is re-raised so the server keeps its abort
// semantics.
//
//nolint:errcheck,gosec,contextcheck // ignore error
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:err113,errorlint // this must compare directly
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			logHandlerPanic(r, rvr)

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			if r.Header.Get("Connection") != "Upgrade" {
				w.WriteHeader(http.StatusInternalServerError)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"message": "Internal server error",
			})
		}()

		next.ServeHTTP(w, r)
	})
}

func logHandlerPanic(r *http.Request, rvr any) {
	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(r.Context(), "panic on the server", "because", rvr, "stack", paths)
		return
	}
	slog.ErrorContext(r.Context(), "panic on the server trace debug", "because", rvr, "stack", string(stack))
}
