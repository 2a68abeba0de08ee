package metrics

import "github.com/prometheus/client_golang/prometheus"

// OverbookMetrics exposes counters for the suggestion/waitlist/confirmation
// flows. All observe methods are nil-safe so wiring stays optional in tests.
type OverbookMetrics struct {
	suggestionsCreated prometheus.Counter
	invitesTotal       *prometheus.CounterVec
	confirmationsTotal *prometheus.CounterVec
}

func NewOverbookMetrics(reg prometheus.Registerer) *OverbookMetrics {
	m := &OverbookMetrics{
		suggestionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "overbook",
			Name:      "suggestions_created_total",
			Help:      "Total overbook suggestions materialized by the generator",
		}),
		invitesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "overbook",
			Name:      "invites_total",
			Help:      "Total waitlist invite attempts",
		}, []string{"mode", "outcome"}),
		confirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "overbook",
			Name:      "confirmations_total",
			Help:      "Total invite confirmation attempts",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.suggestionsCreated, m.invitesTotal, m.confirmationsTotal)
	return m
}

func (m *OverbookMetrics) ObserveSuggestionsCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.suggestionsCreated.Add(float64(n))
}

func (m *OverbookMetrics) ObserveInvite(mode, outcome string) {
	if m == nil {
		return
	}
	m.invitesTotal.WithLabelValues(mode, outcome).Inc()
}

func (m *OverbookMetrics) ObserveConfirmation(outcome string) {
	if m == nil {
		return
	}
	m.confirmationsTotal.WithLabelValues(outcome).Inc()
}
