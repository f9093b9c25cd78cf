package config

import (
	"fmt"
	"net"

	"github.com/spf13/viper"
)

type MetricsConfig struct {
	Enable bool
	Addr   string
}

func (c MetricsConfig) Validate() error {
	if !c.Enable {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid metrics address: %w", err)
	}
	return nil
}

func LoadMetricsConfigFromCLI() MetricsConfig {
	return MetricsConfig{
		Enable: viper.GetBool("enable-prometheus"),
		Addr:   viper.GetString("prometheus-addr"),
	}
}
