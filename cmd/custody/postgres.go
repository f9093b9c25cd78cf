package custody

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/output/postgresql"
)

var PostgresCmd = &cobra.Command{
	Use:   "postgres",
	Short: "Export chain data to a PostgreSQL database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		postgresConfig := config.LoadPostgresConfigFromCLI()
		if err := postgresConfig.Validate(); err != nil {
			return fmt.Errorf("invalid PostgreSQL configuration: %w", err)
		}
		exportConfig, err := loadExportConfig()
		if err != nil {
			return err
		}

		slog.Debug("Command-line arguments", "postgresConfig", postgresConfig)

		handler, err := postgresql.NewPostgresOutputHandler(postgresConfig, exportConfig.MaxConcurrency)
		if err != nil {
			return fmt.Errorf("failed to create PostgreSQL output handler: %w", err)
		}
		return export(cmd, handler, exportConfig, postgresConfig.Resume)
	},
}

func init() {
	PostgresCmd.Flags().StringP("postgres-conn", "p", "", "PostgreSQL connection string")
	PostgresCmd.Flags().Bool("resume", true, "Continue after the latest block already stored")

	if err := viper.BindPFlags(PostgresCmd.Flags()); err != nil {
		slog.Error("Failed to bind PostgresCmd flags", "error", err)
	}
}
