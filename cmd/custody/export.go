package custody

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/custody/internal/client"
	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/exporter"
	"github.com/liftedinit/custody/internal/output"
)

var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a snapshot of the chain to various output formats",
	Long:  `Fetch the chain once and write its blocks and transactions in the specified format.`,
}

func init() {
	ExportCmd.PersistentFlags().Uint64P("start", "s", 0, "First block index to export")
	ExportCmd.PersistentFlags().Uint64P("stop", "e", 0, "Last block index to export (default: last block)")
	ExportCmd.PersistentFlags().UintP("max-concurrency", "c", 16, "Maximum number of blocks written concurrently")
	ExportCmd.PersistentFlags().String("from-json", "", "Read the chain from a JSON export directory instead of the ledger")
	ExportCmd.PersistentFlags().Bool("no-progress", false, "Do not display the progress bar")

	if err := viper.BindPFlags(ExportCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind ExportCmd flags", "error", err)
	}

	ExportCmd.AddCommand(jsonCmd, tsvCmd, PostgresCmd)
}

// chainSource picks the ledger or a previous JSON snapshot.
func chainSource() (exporter.ChainSource, error) {
	if dir := viper.GetString("from-json"); dir != "" {
		return exporter.SnapshotSource{Dir: dir}, nil
	}
	ledgerConfig := config.LoadLedgerConfigFromCLI()
	if err := ledgerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Ledger configuration: %w", err)
	}
	return client.NewLedgerClient(ledgerConfig), nil
}

func loadExportConfig() (config.ExportConfig, error) {
	exportConfig := config.LoadExportConfigFromCLI()
	if err := exportConfig.Validate(); err != nil {
		return exportConfig, fmt.Errorf("invalid Export configuration: %w", err)
	}
	slog.Debug("Command-line arguments", "exportConfig", exportConfig)
	return exportConfig, nil
}

// export runs the export into handler and closes it.
func export(cmd *cobra.Command, handler output.OutputHandler, exportConfig config.ExportConfig, resume bool) (err error) {
	defer func() {
		if closeErr := handler.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", closeErr)
		}
	}()

	source, err := chainSource()
	if err != nil {
		return err
	}

	opts := exporter.Options{Resume: resume}
	if !viper.GetBool("no-progress") {
		opts.Progress = cmd.ErrOrStderr()
	}

	n, err := exporter.Export(cmd.Context(), source, handler, exportConfig, opts)
	if err != nil {
		return err
	}
	slog.Info("Export finished", "blocks", n)
	return nil
}
