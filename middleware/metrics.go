package middleware

import (
	"net/http"
	"time"

	"blogposts/pkg/metrics"
)

// Metrics records request counts and latencies by route pattern. It reads
// r.Pattern after the mux has run, so it must wrap the mux.
func Metrics(m *metrics.HTTPMetrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.Observe(r.Method, route, rec.status, time.Since(start))
	})
}
