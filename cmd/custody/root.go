package custody

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/custody/internal/config"
)

var (
	validLogLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	validLogLevelsStr = strings.Join(slices.Sorted(maps.Keys(validLogLevels)), "|")
)

var RootCmd = &cobra.Command{
	Use:   "custody",
	Short: "Track product custody on a ledger",
	Long:  `custody talks to a product chain-of-custody ledger: it shows the chain, submits custody events, mines blocks and traces a product's history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := viper.GetString("logLevel")
		if err := setLogLevel(logLevel); err != nil {
			return err
		}
		slog.Debug("Application started", "version", Version)
		return nil
	},
}

// setLogLevel sets the log level. Logs go to stderr, stdout is reserved for the view.
func setLogLevel(logLevel string) error {
	level, exists := validLogLevels[logLevel]
	if !exists {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", logLevel, validLogLevelsStr)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func init() {
	RootCmd.PersistentFlags().StringP("logLevel", "l", "info", fmt.Sprintf("set log level (%s)", validLogLevelsStr))
	RootCmd.PersistentFlags().StringP("api-url", "u", config.DefaultAPIURL, "Base URL of the ledger service")
	RootCmd.PersistentFlags().Duration("message-ttl", config.DefaultMessageTTL, "How long notifications stay visible")
	RootCmd.PersistentFlags().Bool("local-history", false, "Reconstruct product history from the fetched chain instead of asking the ledger")
	RootCmd.PersistentFlags().String("timezone", "", "IANA timezone used to display timestamps (default: local)")
	RootCmd.PersistentFlags().StringP("format", "f", "text", "Output format (text|json)")
	RootCmd.PersistentFlags().Bool("enable-prometheus", false, "Enable Prometheus metrics server")
	RootCmd.PersistentFlags().String("prometheus-addr", "0.0.0.0:2112", "Address and port of the Prometheus metrics server")
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind rootCmd flags", "error", err)
	}

	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.custody")
	viper.AddConfigPath("/etc/custody")

	viper.SetEnvPrefix("custody")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	RootCmd.AddCommand(
		statsCmd,
		chainCmd,
		refreshCmd,
		SubmitCmd,
		trackCmd,
		mineCmd,
		validateCmd,
		productsCmd,
		healthCmd,
		consoleCmd,
		ExportCmd,
		versionCmd,
	)
}

// Execute runs the root command.
func Execute() {
	if err := viper.ReadInConfig(); err == nil {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	} else {
		slog.Debug("No config file found")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handleInterrupt(cancel)

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("An error occurred", "error", err)
		os.Exit(1)
	}
}

// handleInterrupt handles interrupt signals for graceful shutdown.
func handleInterrupt(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		slog.Info("Received interrupt signal, shutting down...")
		cancel()
	}()
}
