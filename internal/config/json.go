package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// JSONConfig controls the per-block JSON snapshot.
type JSONConfig struct {
	Output string
	Indent bool
}

func (c JSONConfig) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("missing JSON output directory")
	}
	return nil
}

func LoadJSONConfigFromCLI() JSONConfig {
	return JSONConfig{
		Output: viper.GetString("json-out"),
		Indent: viper.GetBool("json-indent"),
	}
}
