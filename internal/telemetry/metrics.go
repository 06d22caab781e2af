package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	SSEClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sse_clients",
		Help: "Number of currently connected SSE clients",
	})
	RuleTableRules = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rule_table_rules",
		Help: "Number of rules in the rule table currently in force",
	})
	RuleTableLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_table_loads_total",
			Help: "Rule table loads by result (ok, error)",
		},
		[]string{"result"},
	)
	RuleApplications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_applications_total",
			Help: "Rule applications that changed the text, by mode",
		},
		[]string{"mode"},
	)
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook deliveries by result (ok, failed, dropped)",
		},
		[]string{"result"},
	)
	Translations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "translations_total",
		Help: "Total translate calls",
	})
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, SSEClients, RuleTableRules, RuleTableLoads, RuleApplications, WebhookDeliveries, Translations)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		// route pattern is only known after routing
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
