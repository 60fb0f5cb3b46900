package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for the chat flow and the admin surface.
type Metrics struct {
	messagesTotal     *prometheus.CounterVec
	claimsTotal       *prometheus.CounterVec
	adminActionsTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Inbound chat messages by conversation stage",
		}, []string{"stage"}),
		claimsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "slots",
			Name:      "claims_total",
			Help:      "Slot claim attempts by outcome",
		}, []string{"outcome"}),
		adminActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "admin",
			Name:      "actions_total",
			Help:      "Admin slot mutations by action",
		}, []string{"action"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.claimsTotal, m.adminActionsTotal)
	return m
}

func (m *Metrics) ObserveMessage(stage string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveClaim(outcome string) {
	if m == nil {
		return
	}
	m.claimsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAdminAction(action string) {
	if m == nil {
		return
	}
	m.adminActionsTotal.WithLabelValues(action).Inc()
}
