package metrics_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liftedinit/custody/internal/client"
	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/metrics"
	"github.com/liftedinit/custody/internal/models"
	"github.com/liftedinit/custody/internal/testutil"
)

func TestCreateMetricsServer(t *testing.T) {
	t.Run("StartServer", func(t *testing.T) {
		ledger := testutil.NewFakeLedger(t, testutil.Chain(2, map[uint64][]models.Transaction{
			1: {testutil.Tx("P", models.StatusInTransit)},
		}))
		source := client.NewLedgerClient(config.LedgerConfig{APIURL: ledger.URL()})

		server, err := metrics.CreateMetricsServer(source, "127.0.0.1:0", metrics.NewActionMetrics())
		require.NoError(t, err)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := server.Shutdown(ctx)
			require.NoError(t, err)
		}()

		resp, err := http.Get("http://" + server.Addr + "/metrics")
		require.NoError(t, err, "Failed to connect to metrics server")
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		text := string(body)
		require.Contains(t, text, `custody_ledger_blocks{source="ledger"} 2`)
		require.Contains(t, text, `custody_ledger_transactions{source="ledger"} 1`)
		require.Contains(t, text, `custody_ledger_stats_up{source="ledger"} 1`)
		require.Contains(t, text, `custody_ledger_chain_valid{source="ledger"} 1`)
		require.Contains(t, text, `custody_ledger_up{service="blockchain-api",source="ledger"} 1`)
		require.Contains(t, text, `custody_actions_total{action="mine",outcome="success"} 0`)
		require.Contains(t, text, "go_goroutines")

		require.Equal(t, 1, ledger.Requests("GET /stats"))
		require.Equal(t, 1, ledger.Requests("GET /health"))
	})

	t.Run("WhenInvalidAddress", func(t *testing.T) {
		source := client.NewLedgerClient(config.LedgerConfig{APIURL: "http://127.0.0.1:1"})
		_, err := metrics.CreateMetricsServer(source, "invalid-address😆")
		require.Error(t, err)
	})

	t.Run("WhenInvalidPort", func(t *testing.T) {
		source := client.NewLedgerClient(config.LedgerConfig{APIURL: "http://127.0.0.1:1"})
		_, err := metrics.CreateMetricsServer(source, "localhost:99999")
		require.Error(t, err)
	})

	t.Run("WhenSourceIsNil", func(t *testing.T) {
		_, err := metrics.CreateMetricsServer(nil, "127.0.0.1:0")
		require.EqualError(t, err, "failed to create ledger collectors: ledger source is nil")
	})
}
