package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAPIURL     = "http://localhost:5000"
	DefaultMessageTTL = 5 * time.Second
)

type LedgerConfig struct {
	APIURL       string
	MessageTTL   time.Duration
	LocalHistory bool
	Timezone     string
}

func (c LedgerConfig) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API URL scheme %q: must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing API URL host")
	}
	if c.MessageTTL <= 0 {
		return fmt.Errorf("message TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the display timezone. An empty timezone means the local zone.
func (c LedgerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func LoadLedgerConfigFromCLI() LedgerConfig {
	return LedgerConfig{
		APIURL:       viper.GetString("api-url"),
		MessageTTL:   viper.GetDuration("message-ttl"),
		LocalHistory: viper.GetBool("local-history"),
		Timezone:     viper.GetString("timezone"),
	}
}
