package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"NewsDigest/internal/ports"
)

// Recorder collects per-run fetch and pipeline metrics in its own registry.
type Recorder struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stages   *prometheus.GaugeVec
}

var (
	_ ports.FetchRecorder = (*Recorder)(nil)
	_ ports.StageRecorder = (*Recorder)(nil)
)

// NewRecorder registers the digest collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdigest",
			Name:      "adapter_fetch_total",
			Help:      "Adapter fetches by outcome.",
		}, []string{"adapter", "status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdigest",
			Name:      "adapter_items_total",
			Help:      "Valid items returned per adapter.",
		}, []string{"adapter"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "newsdigest",
			Name:      "adapter_fetch_duration_seconds",
			Help:      "Adapter fetch latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"adapter"}),
		stages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "newsdigest",
			Name:      "pipeline_items",
			Help:      "Items remaining after each pipeline stage.",
		}, []string{"stage"}),
	}
	r.registry.MustRegister(r.fetches, r.items, r.duration, r.stages)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveFetch counts one adapter fetch by outcome and records its item count and latency.
func (r *Recorder) ObserveFetch(adapter string, items int, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.fetches.WithLabelValues(adapter, status).Inc()
	r.items.WithLabelValues(adapter).Add(float64(items))
	r.duration.WithLabelValues(adapter).Observe(elapsed.Seconds())
}

// ObserveStage sets the item count left after a pipeline stage.
func (r *Recorder) ObserveStage(stage string, items int) {
	r.stages.WithLabelValues(stage).Set(float64(items))
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
