package promhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/amp/store"
)

// Options configures the exported metrics.
type Options struct {
	// Namespace is the metrics namespace (default: "amp").
	Namespace string
	// Subsystem is the metrics subsystem (default: "store").
	Subsystem string
	// ConstLabels are added to every metric, e.g. {"store": "orders"}.
	ConstLabels prometheus.Labels
	// Registry defaults to prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Hooks counts store events. Keys are never used as labels.
type Hooks struct {
	selfHeal    *prometheus.CounterVec
	setRejected prometheus.Counter
	putRejected *prometheus.CounterVec
}

var _ store.Hooks = (*Hooks)(nil)

// New registers the counters. It panics if they are already registered
// with the same registry, like promauto does.
func New(opts Options) *Hooks {
	if opts.Namespace == "" {
		opts.Namespace = "amp"
	}
	if opts.Subsystem == "" {
		opts.Subsystem = "store"
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(opts.Registry)

	return &Hooks{
		selfHeal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Subsystem:   opts.Subsystem,
			Name:        "self_heal_total",
			Help:        "Stored messages deleted because they no longer decode",
			ConstLabels: opts.ConstLabels,
		}, []string{"reason"}),

		setRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Subsystem:   opts.Subsystem,
			Name:        "set_rejected_total",
			Help:        "Writes the provider refused (eviction or backpressure)",
			ConstLabels: opts.ConstLabels,
		}),

		putRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Subsystem:   opts.Subsystem,
			Name:        "put_rejected_total",
			Help:        "Messages refused before reaching the provider",
			ConstLabels: opts.ConstLabels,
		}, []string{"reason"}),
	}
}

func (h *Hooks) SelfHeal(_, reason string)    { h.selfHeal.WithLabelValues(reason).Inc() }
func (h *Hooks) SetRejected(string)           { h.setRejected.Inc() }
func (h *Hooks) PutRejected(_, reason string) { h.putRejected.WithLabelValues(reason).Inc() }
