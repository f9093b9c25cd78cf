package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
)

type PostgresConfig struct {
	ConnString string
	// Resume starts after the highest block already stored when that is past the start block.
	Resume bool
}

func (c PostgresConfig) Validate() error {
	if c.ConnString == "" {
		return fmt.Errorf("missing PostgreSQL connection string")
	}

	if _, err := pgxpool.ParseConfig(c.ConnString); err != nil {
		return fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	return nil
}

func LoadPostgresConfigFromCLI() PostgresConfig {
	return PostgresConfig{
		ConnString: viper.GetString("postgres-conn"),
		Resume:     viper.GetBool("resume"),
	}
}
