package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// TSVConfig controls the blocks.tsv/transactions.tsv snapshot.
type TSVConfig struct {
	Output    string
	NoHeaders bool
}

func (c TSVConfig) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("missing TSV output directory")
	}
	return nil
}

func LoadTSVConfigFromCLI() TSVConfig {
	return TSVConfig{
		Output:    viper.GetString("tsv-out"),
		NoHeaders: viper.GetBool("tsv-no-headers"),
	}
}
