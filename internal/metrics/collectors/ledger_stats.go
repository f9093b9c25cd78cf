package collectors

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerStatsCollector exposes the ledger's own aggregate counts, fetched on every scrape.
type LedgerStatsCollector struct {
	source       LedgerSource
	blocks       *prometheus.Desc
	transactions *prometheus.Desc
	products     *prometheus.Desc
	pending      *prometheus.Desc
	upDesc       *prometheus.Desc
}

func NewLedgerStatsCollector(source LedgerSource) *LedgerStatsCollector {
	return &LedgerStatsCollector{
		source: source,
		blocks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "blocks"),
			"Number of blocks in the ledger chain",
			nil,
			ledgerLabels,
		),
		transactions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "transactions"),
			"Number of transactions recorded in blocks",
			nil,
			ledgerLabels,
		),
		products: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "products"),
			"Number of distinct product ids",
			nil,
			ledgerLabels,
		),
		pending: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "pending_transactions"),
			"Number of transactions waiting for the next block",
			nil,
			ledgerLabels,
		),
		upDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "stats_up"),
			"Whether the stats query was successful.",
			nil,
			ledgerLabels,
		),
	}
}

func (c *LedgerStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.blocks
	ch <- c.transactions
	ch <- c.products
	ch <- c.pending
	ch <- c.upDesc
}

func (c *LedgerStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.source.GetStats(context.Background())
	if err != nil {
		slog.Error("Failed to query ledger", "query", "stats", "error", err)
		reportUpMetric(ch, c.upDesc, 0)
		for _, desc := range []*prometheus.Desc{c.blocks, c.transactions, c.products, c.pending} {
			reportInvalidMetric(ch, desc, err)
		}
		return
	}

	reportUpMetric(ch, c.upDesc, 1)
	ch <- prometheus.MustNewConstMetric(c.blocks, prometheus.GaugeValue, float64(stats.TotalBlocks))
	ch <- prometheus.MustNewConstMetric(c.transactions, prometheus.GaugeValue, float64(stats.TotalTransactions))
	ch <- prometheus.MustNewConstMetric(c.products, prometheus.GaugeValue, float64(stats.TotalProducts))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(stats.PendingTransactions))
}

func init() {
	RegisterCollectorFactory(func(source LedgerSource, extraParams ...interface{}) (prometheus.Collector, error) {
		return NewLedgerStatsCollector(source), nil
	})
}
