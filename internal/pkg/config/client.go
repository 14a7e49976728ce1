package config

import (
	"fmt"
	"net/url"
	"time"
)

// Columns sets table widths for text exports.
type Columns struct {
	ID     int `yaml:"id"`
	Kind   int `yaml:"kind"`
	Status int `yaml:"status"`
	Detail int `yaml:"detail"`
}

// ClientConfig configures handoffctl.
type ClientConfig struct {
	BridgeURL string        `yaml:"bridge_url" env:"HANDOFF_BRIDGE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"HANDOFF_CLIENT_TIMEOUT"`
	Columns   Columns       `yaml:"columns"`
	Logging   Logging       `yaml:"logging"`
}

// LoadClientConfig builds the client configuration the same way LoadConfig does.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := defaultClientConfig()
	if err := load(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the values are usable.
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.BridgeURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("bridge_url must be an absolute http(s) URL")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return validateLogging(c.Logging)
}
