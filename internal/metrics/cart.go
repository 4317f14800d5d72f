package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart mutations. A nil *CartMetrics is a valid no-op.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Successful cart mutations.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutation_failures_total",
		Help: "Rejected or failed cart mutations.",
	}, []string{"op", "kind"})
	reg.MustRegister(mutations, failures)
	return &CartMetrics{
		mutations: mutations,
		failures:  failures,
	}
}

func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (c *CartMetrics) IncFailure(op, kind string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(op), normalizeLabel(kind)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
