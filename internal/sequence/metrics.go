package sequence

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts rotation outcomes. A nil *Metrics records nothing.
type Metrics struct {
	advances  prometheus.Counter
	conflicts *prometheus.CounterVec
	empty     *prometheus.CounterVec
}

// NewMetrics creates the rotation collectors under namespace and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		advances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequence",
			Name:      "advances_total",
			Help:      "Prompts handed out by advance.",
		}),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sequence",
				Name:      "cursor_conflicts_total",
				Help:      "Cursor writes lost to a concurrent writer.",
			},
			[]string{"operation"},
		),
		empty: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sequence",
				Name:      "empty_total",
				Help:      "Operations that found no active prompts.",
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{m.advances, m.conflicts, m.empty} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) advanced() {
	if m != nil {
		m.advances.Inc()
	}
}

func (m *Metrics) conflicted(op string) {
	if m != nil {
		m.conflicts.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) emptied(op string) {
	if m != nil {
		m.empty.WithLabelValues(op).Inc()
	}
}
