package httpserver

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs one line per request and feeds the HTTP metrics. With
// Verbose set the response payload is logged too.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		var payload bytes.Buffer
		if s.cfg.Verbose {
			ww.Tee(&payload)
		}

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveHTTPRequest(r.Method, route, status, elapsed)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
		}
		if s.cfg.Verbose && payload.Len() > 0 {
			attrs = append(attrs, "response", payload.String())
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("request served", attrs...)
			return
		}
		s.logger.Info("request served", attrs...)
	})
}
