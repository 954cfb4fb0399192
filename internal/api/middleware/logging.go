package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"stockadvisor/internal/metrics"
	"stockadvisor/pkg/logger"
)

// LoggingMiddleware logs requests and records per-route metrics
type LoggingMiddleware struct {
	log *logger.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(log *logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		log: log.With("component", "http"),
	}
}

// Handler logs each request once it completes.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		duration := time.Since(start)
		metrics.RecordHTTPRequest(route, r.Method, status, duration)

		m.log.Infow("HTTP request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"bytes", wrapped.BytesWritten(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// Recoverer turns a handler panic into a 500 {detail} response.
func (m *LoggingMiddleware) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil || rec == http.ErrAbortHandler {
				if rec != nil {
					panic(rec)
				}
				return
			}

			m.log.ErrorWithContext(r.Context(), fmt.Errorf("panic: %v", rec), map[string]string{
				"path": r.URL.Path,
			})
			m.log.Debugf("panic stack: %s", debug.Stack())
			WriteDetail(w, http.StatusInternalServerError, fmt.Sprint(rec))
		}()

		next.ServeHTTP(w, r)
	})
}
