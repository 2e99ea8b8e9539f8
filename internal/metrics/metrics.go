package metrics

import (
	"fmt"
	"io"
	"net/http"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var buckets = vm.ExponentialBuckets(1e-3, 5, 6)

// Registry holds the service's metrics set.
type Registry struct {
	set *vm.Set
}

func New() *Registry {
	return &Registry{set: vm.NewSet()}
}

// Middleware counts requests and observes latency per chi route pattern, so
// /customers/{id} is one series rather than one per id.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		labels := fmt.Sprintf(`{method=%q,route=%q,status="%d"}`, req.Method, route, status)
		r.set.GetOrCreateCounter(`http_requests_total` + labels).Inc()
		r.set.GetOrCreatePrometheusHistogramExt(`http_request_duration_seconds`+labels, buckets).UpdateDuration(start)
	})
}

// EventPublished records the outcome of a change notification publish.
func (r *Registry) EventPublished(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.set.GetOrCreateCounter(fmt.Sprintf(`customer_events_published_total{type=%q,result=%q}`, eventType, result)).Inc()
}

func (r *Registry) WritePrometheus(w io.Writer) {
	r.set.WritePrometheus(w)
	vm.WriteProcessMetrics(w)
}

// Handler serves the /metrics endpoint.
func (r *Registry) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.WritePrometheus(w)
	}
}
