package custody

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/output"
)

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Export chain data to JSON files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonConfig := config.LoadJSONConfigFromCLI()
		if err := jsonConfig.Validate(); err != nil {
			return fmt.Errorf("invalid JSON configuration: %w", err)
		}
		exportConfig, err := loadExportConfig()
		if err != nil {
			return err
		}

		handler, err := output.NewJSONOutputHandler(jsonConfig)
		if err != nil {
			return fmt.Errorf("failed to create JSON output handler: %w", err)
		}
		return export(cmd, handler, exportConfig, false)
	},
}

func init() {
	jsonCmd.Flags().StringP("json-out", "o", "out", "JSON output directory")
	jsonCmd.Flags().Bool("json-indent", false, "Indent the JSON files")

	if err := viper.BindPFlags(jsonCmd.Flags()); err != nil {
		slog.Error("Failed to bind jsonCmd flags", "error", err)
	}
}
