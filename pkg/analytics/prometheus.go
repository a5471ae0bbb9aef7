package analytics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusConfig configures the Prometheus sink.
type PrometheusConfig struct {
	// Namespace is the metrics namespace (default: "spanav").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// PrometheusOption configures the Prometheus sink.
type PrometheusOption func(*PrometheusConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Registry = registry
	}
}

func defaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		Namespace: "spanav",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Prometheus counts page views by route key.
//
// Metrics:
//   - spanav_page_views_total{route}
//
// Route keys, not concrete paths, are used as label values so cardinality is
// bounded by the size of the route table.
type Prometheus struct {
	pageViews *prometheus.CounterVec
}

// NewPrometheus registers the page view counter and returns the sink.
// Registering twice on the same registry panics, as with promauto.
func NewPrometheus(opts ...PrometheusOption) *Prometheus {
	config := defaultPrometheusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	return &Prometheus{
		pageViews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "page_views_total",
			Help:        "Total number of resolved page views by route",
			ConstLabels: config.ConstLabels,
		}, []string{"route"}),
	}
}

// Page implements Sink.
func (p *Prometheus) Page(_ context.Context, event PageEvent) error {
	route := event.Name
	if route == "" {
		route = "/"
	}
	p.pageViews.WithLabelValues(route).Inc()
	return nil
}
