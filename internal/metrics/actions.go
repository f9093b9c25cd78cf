package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/liftedinit/custody/internal/controller"
)

// ActionMetrics counts controller action outcomes and tracks the actions currently loading.
type ActionMetrics struct {
	outcomes *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

func NewActionMetrics() *ActionMetrics {
	m := &ActionMetrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "custody",
			Subsystem: "actions",
			Name:      "total",
			Help:      "Completed controller actions by outcome",
		}, []string{"action", "outcome"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "custody",
			Subsystem: "actions",
			Name:      "in_flight",
			Help:      "Controller actions currently waiting on the ledger",
		}, []string{"action"}),
	}
	// Export every series from the start so rates work before the first failure.
	for _, action := range controller.Actions {
		m.inFlight.WithLabelValues(string(action))
		m.outcomes.WithLabelValues(string(action), string(controller.PhaseSuccess))
		m.outcomes.WithLabelValues(string(action), string(controller.PhaseError))
	}
	return m
}

func (m *ActionMetrics) PhaseChanged(action controller.Action, phase controller.Phase) {
	switch phase {
	case controller.PhaseLoading:
		m.inFlight.WithLabelValues(string(action)).Inc()
	case controller.PhaseSuccess, controller.PhaseError:
		m.inFlight.WithLabelValues(string(action)).Dec()
		m.outcomes.WithLabelValues(string(action), string(phase)).Inc()
	}
}

func (m *ActionMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.outcomes.Describe(ch)
	m.inFlight.Describe(ch)
}

func (m *ActionMetrics) Collect(ch chan<- prometheus.Metric) {
	m.outcomes.Collect(ch)
	m.inFlight.Collect(ch)
}
