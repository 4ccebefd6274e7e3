// Package trace tags each request with an ID, stores a request-scoped logger
// in the context and records request counters.
package trace

import (
	"net/http"
	"sync/atomic"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
)

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests   int64
	ClientErrors    int64
	ServerErrors    int64
	TotalDurationMs int64
}

// AverageMs is the mean request duration so far.
func (m Metrics) AverageMs() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.TotalDurationMs) / float64(m.TotalRequests)
}

// Middleware handles request tracing and logging
type Middleware struct {
	logger    *applog.Logger
	extractIP func(*http.Request) string

	total    atomic.Int64
	client   atomic.Int64
	server   atomic.Int64
	duration atomic.Int64
}

// NewMiddleware creates a new trace middleware. It expects chi's RequestID
// middleware to run first.
func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{logger: logger, extractIP: extractIP}
}

// Handler returns HTTP middleware for request tracing
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		requestID := chimw.GetReqID(r.Context())

		logger := m.logger.With(applog.FieldRequestID, requestID)
		ctx := applog.WithLogger(r.Context(), logger)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start).Milliseconds()

		m.total.Add(1)
		m.duration.Add(elapsed)
		switch {
		case status >= 500:
			m.server.Add(1)
		case status >= 400:
			m.client.Add(1)
		}

		applog.NewStructuredLogger(logger).LogHTTPEnd(ctx, r, status, elapsed, clientIP)
	})
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:   m.total.Load(),
		ClientErrors:    m.client.Load(),
		ServerErrors:    m.server.Load(),
		TotalDurationMs: m.duration.Load(),
	}
}
