package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	parseDuration     *prom.HistogramVec
	outcomes          *prom.CounterVec
	transformFailures *prom.CounterVec
	sinkWrites        *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		parseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "contentpipe",
			Name:      "parse_duration_seconds",
			Help:      "Duration of ParseContent calls by extension",
			Buckets:   prom.DefBuckets,
		}, []string{"extension"}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contentpipe",
			Name:      "parse_outcomes_total",
			Help:      "ParseContent outcomes by extension",
		}, []string{"extension", "outcome"}),
		transformFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contentpipe",
			Name:      "transform_failures_total",
			Help:      "Transformer failures that aborted a chain",
		}, []string{"transformer"}),
		sinkWrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contentpipe",
			Name:      "sink_writes_total",
			Help:      "Result sink writes by sink and result",
		}, []string{"sink", "result"}),
	}
	reg.MustRegister(pr.parseDuration, pr.outcomes, pr.transformFailures, pr.sinkWrites)
	return pr
}

func (p *PrometheusRecorder) ObserveParseDuration(ext string, d time.Duration) {
	if p == nil {
		return
	}
	p.parseDuration.WithLabelValues(ext).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOutcome(ext string, outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.outcomes.WithLabelValues(ext, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncTransformFailure(transformer string) {
	if p == nil {
		return
	}
	p.transformFailures.WithLabelValues(transformer).Inc()
}

func (p *PrometheusRecorder) IncSinkWrite(sink string, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.sinkWrites.WithLabelValues(sink, res).Inc()
}
