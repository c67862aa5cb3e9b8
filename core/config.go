package core

import (
	"fmt"
	"strings"
)

type Config struct {
	ServiceName string `koanf:"service_name" mapstructure:"service_name"`
	// LoadLimit caps concurrent store reads in batch loads.
	LoadLimit int `koanf:"load_limit" mapstructure:"load_limit"`
	// AccountSuffix is appended to the user name of auto-created accounts.
	AccountSuffix string `koanf:"account_suffix" mapstructure:"account_suffix"`
	// Web enables the auth:instance extension.
	Web bool `koanf:"web" mapstructure:"web"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:   "accounts",
		LoadLimit:     DefaultLoadLimit,
		AccountSuffix: DefaultAccountSuffix,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.LoadLimit < 1 {
		return fmt.Errorf("core: load_limit must be at least 1, got %d", c.LoadLimit)
	}
	return nil
}
