package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ledgercollectors "github.com/liftedinit/custody/internal/metrics/collectors"
)

// NewRegistry builds a registry holding the Go runtime collectors, every registered ledger
// collector bound to source, and any extra collectors.
func NewRegistry(source ledgercollectors.LedgerSource, extra ...prometheus.Collector) (*prometheus.Registry, error) {
	ledger, err := ledgercollectors.DefaultRegistry.CreateCollectors(source)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger collectors: %w", err)
	}

	reg := prometheus.NewRegistry()
	all := append([]prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}, ledger...)
	all = append(all, extra...)
	for _, c := range all {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return reg, nil
}

// CreateMetricsServer starts serving /metrics on addr. The listener is bound before returning so
// address errors are reported to the caller; the returned server's Addr is the bound address.
func CreateMetricsServer(source ledgercollectors.LedgerSource, addr string, extra ...prometheus.Collector) (*http.Server, error) {
	reg, err := NewRegistry(source, extra...)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Addr: ln.Addr().String(), Handler: mux}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start metrics server", "error", err)
		}
	}()

	slog.Info("Metrics server started", "addr", server.Addr)
	return server, nil
}
