// Package metrics exposes Prometheus instrumentation for the HTTP surface,
// the collaboration operations and housekeeping.
package metrics

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quill"

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	collabOps     *prometheus.CounterVec
	collabLatency *prometheus.HistogramVec

	housekeepingRemoved *prometheus.CounterVec
}

// New registers the collectors on reg with constLabels attached. Passing a
// fresh prometheus.NewRegistry keeps tests isolated.
func New(reg *prometheus.Registry, constLabels prometheus.Labels) *Metrics {
	f := promauto.With(prometheus.WrapRegistererWith(constLabels, reg))

	return &Metrics{
		gatherer: reg,

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),

		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		collabOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collab_operations_total",
			Help:      "Collaboration operations by name and outcome.",
		}, []string{"operation", "outcome"}),

		collabLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collab_operation_duration_seconds",
			Help:      "Collaboration operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		housekeepingRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "housekeeping_removed_total",
			Help:      "Rows removed by housekeeping by kind.",
		}, []string{"kind"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. The route label is the
// ServeMux pattern so IDs never become label values.
func (m *Metrics) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

// ObserveCollab records one collaboration operation. Use it deferred:
//
//	defer func(start time.Time) { s.Metrics.ObserveCollab("accept_invite", start, err) }(time.Now())
func (m *Metrics) ObserveCollab(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.collabOps.WithLabelValues(op, Outcome(err)).Inc()
	m.collabLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// HousekeepingRemoved adds n removed rows of the given kind.
func (m *Metrics) HousekeepingRemoved(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.housekeepingRemoved.WithLabelValues(kind).Add(float64(n))
}

// Outcome maps an error onto a low cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch domain.KindOf(err) {
	case domain.ErrValidation:
		return "validation"
	case domain.ErrNotFound:
		return "not_found"
	case domain.ErrForbidden:
		return "forbidden"
	case domain.ErrConflict:
		return "conflict"
	default:
		return "error"
	}
}

var validLabelKey = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseLabels parses "k=v,k2=v2" into constant labels, expanding $VAR
// references first. An empty string yields nil.
func ParseLabels(s string) (prometheus.Labels, error) {
	s = strings.TrimSpace(os.Expand(s, os.Getenv))
	if s == "" {
		return nil, nil
	}
	labels := prometheus.Labels{}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok {
			return nil, fmt.Errorf("metrics: invalid label %q: expected key=value", pair)
		}
		if !validLabelKey.MatchString(k) {
			return nil, fmt.Errorf("metrics: invalid label key %q", k)
		}
		labels[k] = strings.TrimSpace(v)
	}
	return labels, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
