package custody

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/output"
)

var tsvCmd = &cobra.Command{
	Use:   "tsv",
	Short: "Export chain data to TSV files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tsvConfig := config.LoadTSVConfigFromCLI()
		if err := tsvConfig.Validate(); err != nil {
			return fmt.Errorf("invalid TSV configuration: %w", err)
		}
		exportConfig, err := loadExportConfig()
		if err != nil {
			return err
		}

		handler, err := output.NewTSVOutputHandler(tsvConfig)
		if err != nil {
			return fmt.Errorf("failed to create TSV output handler: %w", err)
		}
		return export(cmd, handler, exportConfig, false)
	},
}

func init() {
	tsvCmd.Flags().String("tsv-out", "tsv", "TSV output directory")
	tsvCmd.Flags().Bool("tsv-no-headers", false, "Do not write header rows")

	if err := viper.BindPFlags(tsvCmd.Flags()); err != nil {
		slog.Error("Failed to bind tsvCmd flags", "error", err)
	}
}
