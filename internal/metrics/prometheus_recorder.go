package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "dskt_docs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolves     *prom.CounterVec
	listDuration *prom.HistogramVec
	listExcluded *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_resolutions_total",
			Help:      "Document resolutions by outcome",
		}, []string{"result"}),
		listDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "section_list_duration_seconds",
			Help:      "Duration of section listings",
			Buckets:   prom.DefBuckets,
		}, []string{"section"}),
		listExcluded: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "section_list_excluded_total",
			Help:      "Content files left out of a listing because they failed to parse",
		}, []string{"section"}),
	}
	reg.MustRegister(pr.resolves, pr.listDuration, pr.listExcluded)
	return pr
}

func (p *PrometheusRecorder) IncResolve(result ResolveResult) {
	if p == nil {
		return
	}
	p.resolves.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveListDuration(section string, d time.Duration) {
	if p == nil {
		return
	}
	p.listDuration.WithLabelValues(section).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncListExcluded(section string) {
	if p == nil {
		return
	}
	p.listExcluded.WithLabelValues(section).Inc()
}
