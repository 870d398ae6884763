// Package metrics exports resource loading statistics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/spfrm/internal/loader"
)

// Config configures the metric set.
type Config struct {
	// Namespace is the metrics namespace (default: "spfrm").
	Namespace string

	// Buckets are the histogram buckets for load duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metric set.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the load duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "spfrm",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a loader.Observer that records resource transitions.
type Metrics struct {
	loadsStarted  prometheus.Counter
	loadsSettled  *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
	inflight      prometheus.Gauge
	profileUses   *prometheus.CounterVec
	groupsSettled *prometheus.CounterVec
}

// New registers the metric set.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		loadsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "resource_loads_started_total",
			Help:      "Total number of resource loads started",
		}),
		loadsSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "resource_loads_settled_total",
			Help:      "Total number of resource loads that reached a terminal state",
		}, []string{"state"}),
		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "resource_load_duration_seconds",
			Help:      "Time from load start to terminal state in seconds",
			Buckets:   config.Buckets,
		}, []string{"state"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "resource_loads_inflight",
			Help:      "Number of resources currently loading",
		}),
		profileUses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "profile_uses_total",
			Help:      "Total number of profile Use calls",
		}, []string{"profile"}),
		groupsSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "dependency_groups_settled_total",
			Help:      "Total number of dependency groups whose callback fired",
		}, []string{"result"}),
	}
}

// Observe implements loader.Observer.
func (m *Metrics) Observe(ev loader.Event) {
	switch ev.State {
	case loader.Loading:
		m.loadsStarted.Inc()
		m.inflight.Inc()
	case loader.Loaded, loader.TimedOut:
		m.inflight.Dec()
		m.loadsSettled.WithLabelValues(ev.State.String()).Inc()
		m.loadDuration.WithLabelValues(ev.State.String()).Observe(ev.Elapsed.Seconds())
	}
}

// ProfileUsed counts a Use call on the named profile.
func (m *Metrics) ProfileUsed(name string) {
	m.profileUses.WithLabelValues(name).Inc()
}

// GroupSettled counts a dependency group whose callback fired.
func (m *Metrics) GroupSettled(err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.groupsSettled.WithLabelValues(result).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
