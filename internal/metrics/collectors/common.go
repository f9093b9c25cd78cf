package collectors

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "custody"

var ledgerLabels = prometheus.Labels{"source": "ledger"}

func reportUpMetric(ch chan<- prometheus.Metric, desc *prometheus.Desc, value float64) {
	metric, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, value)
	if err != nil {
		slog.Error("Failed to create up metric", "error", err)
	} else {
		ch <- metric
	}
}

func reportInvalidMetric(ch chan<- prometheus.Metric, desc *prometheus.Desc, err error) {
	ch <- prometheus.NewInvalidMetric(desc, err)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
