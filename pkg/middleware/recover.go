package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/reqid"
	"github.com/campusprint/printhub/pkg/response"
)

// Recovery turns a handler panic into a logged stack trace and a JSON 500.
// If the handler had already started its response the status cannot change
// and the connection is simply finished. http.ErrAbortHandler is re-raised
// so net/http can abort the connection quietly.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &startedWriter{ResponseWriter: w}
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}
			logger.Error("panic recovered",
				"request_id", reqid.FromCtx(r.Context()),
				"panic", v,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			if !tw.started {
				response.Error(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(tw, r)
	})
}

type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (w *startedWriter) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *startedWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *startedWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
