package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ExportConfig struct {
	MaxConcurrency uint
	BlockStart     uint64
	BlockStop      uint64
}

func (c ExportConfig) Validate() error {
	if c.MaxConcurrency == 0 {
		return fmt.Errorf("max concurrency must be at least 1")
	}
	if c.BlockStop != 0 && c.BlockStart > c.BlockStop {
		return fmt.Errorf("start block is greater than stop block")
	}
	return nil
}

func LoadExportConfigFromCLI() ExportConfig {
	return ExportConfig{
		MaxConcurrency: viper.GetUint("max-concurrency"),
		BlockStart:     viper.GetUint64("start"),
		BlockStop:      viper.GetUint64("stop"),
	}
}
