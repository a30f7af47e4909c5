package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Estimate outcomes used as the "outcome" label.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeNoMatch      = "no_match"
	OutcomeError        = "error"
)

const namespace = "ivfodds"

// Registry owns the server's collectors. The zero value is not usable; call
// New.
type Registry struct {
	reg         *prometheus.Registry
	estimates   *prometheus.CounterVec
	requests    *prometheus.CounterVec
	durations   *prometheus.SummaryVec
	formulaRows prometheus.Gauge
	handler     http.Handler
}

// New returns a Registry with every collector registered.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_total",
			Help:      "Success-rate estimates computed, by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route, method and status code.",
		}, []string{"route", "method", "code"}),
		durations: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving HTTP requests, by route.",
		}, []string{"route"}),
		formulaRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "formula_rows",
			Help:      "Rows in the loaded coefficient table.",
		}),
	}
	r.reg.MustRegister(
		r.estimates,
		r.requests,
		r.durations,
		r.formulaRows,
		collectors.NewGoCollector(),
	)
	r.handler = promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{
		ErrorLog:      errorLog{},
		ErrorHandling: promhttp.ContinueOnError,
	})
	return r
}

// SetFormulaRows records the size of the loaded coefficient table.
func (r *Registry) SetFormulaRows(n int) {
	r.formulaRows.Set(float64(n))
}

// IncEstimate counts one estimate with the given outcome.
func (r *Registry) IncEstimate(outcome string) {
	r.estimates.WithLabelValues(outcome).Inc()
}

// Instrument wraps next so every request is counted and timed under route.
func (r *Registry) Instrument(route string, next http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(
		r.durations.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(r.requests.MustCurryWith(labels), next),
	)
}

// Gather returns the current metric families sorted by name.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.reg.Gather()
}

// ServeHTTP writes the exposition of the registry.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.handler.ServeHTTP(w, req)
}
