package collectors

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// ChainValidityCollector reports the ledger's verdict on its own chain. Nothing is checked locally.
type ChainValidityCollector struct {
	source LedgerSource
	valid  *prometheus.Desc
	length *prometheus.Desc
}

func NewChainValidityCollector(source LedgerSource) *ChainValidityCollector {
	return &ChainValidityCollector{
		source: source,
		valid: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "chain_valid"),
			"1 if the ledger reports its chain as valid, 0 otherwise",
			nil,
			ledgerLabels,
		),
		length: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "chain_length"),
			"Chain length reported with the validity verdict",
			nil,
			ledgerLabels,
		),
	}
}

func (c *ChainValidityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.valid
	ch <- c.length
}

func (c *ChainValidityCollector) Collect(ch chan<- prometheus.Metric) {
	validity, err := c.source.ValidateChain(context.Background())
	if err != nil {
		slog.Error("Failed to query ledger", "query", "chain/valid", "error", err)
		reportInvalidMetric(ch, c.valid, err)
		reportInvalidMetric(ch, c.length, err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.valid, prometheus.GaugeValue, boolValue(validity.Valid))
	ch <- prometheus.MustNewConstMetric(c.length, prometheus.GaugeValue, float64(validity.Length))
}

func init() {
	RegisterCollectorFactory(func(source LedgerSource, extraParams ...interface{}) (prometheus.Collector, error) {
		return NewChainValidityCollector(source), nil
	})
}
