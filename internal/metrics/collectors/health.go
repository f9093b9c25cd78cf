package collectors

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

const healthyStatus = "healthy"

// LedgerUpCollector reports whether the ledger's health endpoint answers healthy.
type LedgerUpCollector struct {
	source LedgerSource
	upDesc *prometheus.Desc
}

func NewLedgerUpCollector(source LedgerSource) *LedgerUpCollector {
	return &LedgerUpCollector{
		source: source,
		upDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "up"),
			"Whether the ledger service reports itself healthy.",
			[]string{"service"},
			ledgerLabels,
		),
	}
}

func (c *LedgerUpCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.upDesc
}

func (c *LedgerUpCollector) Collect(ch chan<- prometheus.Metric) {
	health, err := c.source.Health(context.Background())
	if err != nil {
		slog.Error("Failed to query ledger", "query", "health", "error", err)
		ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, 0, "")
		return
	}
	ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, boolValue(health.Status == healthyStatus), health.Service)
}

func init() {
	RegisterCollectorFactory(func(source LedgerSource, extraParams ...interface{}) (prometheus.Collector, error) {
		return NewLedgerUpCollector(source), nil
	})
}
