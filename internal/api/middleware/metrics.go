package middleware

import (
	"net/http"
	"sync/atomic"
)

// MetricsCollector counts requests and error responses across the router.
type MetricsCollector struct {
	requests atomic.Int64
	errors   atomic.Int64
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

func (mc *MetricsCollector) Requests() int64 { return mc.requests.Load() }
func (mc *MetricsCollector) Errors() int64   { return mc.errors.Load() }

// Middleware counts every request and any response with status 400 or above.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requests.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode >= 400 {
			mc.errors.Add(1)
		}
	})
}
