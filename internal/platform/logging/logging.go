package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/todo-1m/webclient/internal/platform/metrics"
)

// New builds a structured logger. Unknown levels fall back to info.
func New(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
}

// RequestLogger logs every request once it completes and feeds the HTTP
// metrics with the matched chi route pattern.
func RequestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			metrics.ObserveHTTP(route, r.Method, status, started)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(started).Round(time.Microsecond),
			}
			if id := middleware.GetReqID(r.Context()); id != "" {
				fields = append(fields, "request_id", id)
			}
			switch {
			case status >= 500:
				logger.Error("request", fields...)
			case status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Debug("request", fields...)
			}
		})
	}
}
