package custody

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/custody/internal/client"
	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/console"
	"github.com/liftedinit/custody/internal/controller"
	"github.com/liftedinit/custody/internal/metrics"
)

// session is everything a ledger command needs: the client, the terminal view and the
// controller driving it.
type session struct {
	client  *client.LedgerClient
	view    *console.TerminalView
	ctrl    *controller.Controller
	metrics *http.Server
}

func newSession(cmd *cobra.Command) (*session, error) {
	ledgerConfig := config.LoadLedgerConfigFromCLI()
	if err := ledgerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Ledger configuration: %w", err)
	}
	metricsConfig := config.LoadMetricsConfigFromCLI()
	if err := metricsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Metrics configuration: %w", err)
	}
	format, err := console.ParseFormat(viper.GetString("format"))
	if err != nil {
		return nil, err
	}
	loc, err := ledgerConfig.Location()
	if err != nil {
		return nil, err
	}

	slog.Debug("Command-line arguments", "ledgerConfig", ledgerConfig, "metricsConfig", metricsConfig)

	s := &session{
		client: client.NewLedgerClient(ledgerConfig),
		view:   console.NewTerminalView(cmd.OutOrStdout(), format),
	}

	opts := []controller.Option{
		controller.WithLocation(loc),
		controller.WithMessageTTL(ledgerConfig.MessageTTL),
		controller.WithLocalHistory(ledgerConfig.LocalHistory),
	}
	if metricsConfig.Enable {
		actions := metrics.NewActionMetrics()
		s.metrics, err = metrics.CreateMetricsServer(s.client, metricsConfig.Addr, actions)
		if err != nil {
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
		opts = append(opts, controller.WithObserver(actions))
	}

	s.ctrl = controller.New(s.client, s.view, opts...)
	return s, nil
}

func (s *session) Close() {
	s.ctrl.Close()
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metrics.Shutdown(ctx); err != nil {
			slog.Error("Failed to stop metrics server", "error", err)
		}
	}
}

// runAction wraps a controller action into a cobra RunE.
func runAction(action func(s *session, ctx context.Context, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return action(s, cmd.Context(), args)
	}
}
