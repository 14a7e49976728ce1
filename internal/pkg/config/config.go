// Package config loads bridge and client configuration from a YAML file, a
// .env file and HANDOFF_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Server holds the HTTP listener settings.
type Server struct {
	Host            string        `yaml:"host" env:"HANDOFF_SERVER_HOST"`
	Port            int           `yaml:"port" env:"HANDOFF_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HANDOFF_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HANDOFF_SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HANDOFF_SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HANDOFF_SERVER_SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"HANDOFF_SERVER_MAX_BODY_BYTES"`
}

// Host describes the application the bridge impersonates.
type Host struct {
	BundleID string `yaml:"bundle_id" env:"HANDOFF_BUNDLE_ID"`
	// InstalledSchemes answer the peer-installed probes.
	InstalledSchemes []string `yaml:"installed_schemes" env:"HANDOFF_INSTALLED_SCHEMES" envSeparator:","`
}

// Wechat is the WeChat registration.
type Wechat struct {
	Enabled       bool   `yaml:"enabled" env:"HANDOFF_WECHAT_ENABLED"`
	AppID         string `yaml:"app_id" env:"HANDOFF_WECHAT_APP_ID"`
	UniversalLink string `yaml:"universal_link" env:"HANDOFF_WECHAT_UNIVERSAL_LINK"`
}

// Weibo is the Weibo registration.
type Weibo struct {
	Enabled       bool   `yaml:"enabled" env:"HANDOFF_WEIBO_ENABLED"`
	AppID         string `yaml:"app_id" env:"HANDOFF_WEIBO_APP_ID"`
	UniversalLink string `yaml:"universal_link" env:"HANDOFF_WEIBO_UNIVERSAL_LINK"`
	RedirectLink  string `yaml:"redirect_link" env:"HANDOFF_WEIBO_REDIRECT_LINK"`
}

// Storage selects where the shared channel and sign tokens live. Empty paths
// keep them in memory.
type Storage struct {
	ChannelFile string `yaml:"channel_file" env:"HANDOFF_CHANNEL_FILE"`
	TokenDB     string `yaml:"token_db" env:"HANDOFF_TOKEN_DB"`
}

// Bridge tunes the operation store and the link outbox.
type Bridge struct {
	OperationTTL    time.Duration `yaml:"operation_ttl" env:"HANDOFF_OPERATION_TTL"`
	LinkTTL         time.Duration `yaml:"link_ttl" env:"HANDOFF_LINK_TTL"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"HANDOFF_CLEANUP_INTERVAL"`
	OutboxCapacity  int           `yaml:"outbox_capacity" env:"HANDOFF_OUTBOX_CAPACITY"`
}

// Logging holds the log settings.
type Logging struct {
	Level  string `yaml:"level" env:"HANDOFF_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"HANDOFF_LOG_FORMAT"` // json, text
}

// Config is the bridge configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Host    Host    `yaml:"host"`
	Wechat  Wechat  `yaml:"wechat"`
	Weibo   Weibo   `yaml:"weibo"`
	Storage Storage `yaml:"storage"`
	Bridge  Bridge  `yaml:"bridge"`
	Logging Logging `yaml:"logging"`
}

// LoadConfig builds the bridge configuration: defaults, then the YAML file at
// path (a missing file is skipped), then .env and the process environment.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if err := load(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string, cfg any) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := loadFromYAML(path, cfg); err != nil {
		return err
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// loadFromYAML overlays the file at filename onto cfg. A missing file is not an error.
func loadFromYAML(filename string, cfg any) error {
	if filename == "" {
		return nil
	}
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse yaml config %s: %w", filename, err)
	}
	return nil
}

// Address returns host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port number (1-65535)")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}

	if strings.TrimSpace(c.Host.BundleID) == "" {
		return fmt.Errorf("host.bundle_id is required")
	}
	if !c.Wechat.Enabled && !c.Weibo.Enabled {
		return fmt.Errorf("at least one of wechat or weibo must be enabled")
	}
	if c.Wechat.Enabled {
		if c.Wechat.AppID == "" {
			return fmt.Errorf("wechat.app_id is required")
		}
		if err := validateLink("wechat.universal_link", c.Wechat.UniversalLink); err != nil {
			return err
		}
	}
	if c.Weibo.Enabled {
		if strings.TrimLeft(c.Weibo.AppID, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") == "" {
			return fmt.Errorf("weibo.app_id must contain the numeric app key")
		}
		if err := validateLink("weibo.universal_link", c.Weibo.UniversalLink); err != nil {
			return err
		}
		if err := validateLink("weibo.redirect_link", c.Weibo.RedirectLink); err != nil {
			return err
		}
	}

	if c.Bridge.OperationTTL <= 0 {
		return fmt.Errorf("bridge.operation_ttl must be positive")
	}
	if c.Bridge.LinkTTL <= 0 {
		return fmt.Errorf("bridge.link_ttl must be positive")
	}
	if c.Bridge.CleanupInterval <= 0 {
		return fmt.Errorf("bridge.cleanup_interval must be positive")
	}
	if c.Bridge.OutboxCapacity < 0 {
		return fmt.Errorf("bridge.outbox_capacity must not be negative (0 for unbounded)")
	}

	return validateLogging(c.Logging)
}

func validateLink(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute https URL", name)
	}
	return nil
}

func validateLogging(l Logging) error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	switch l.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	return nil
}

// MustParseURL parses a link already checked by Validate.
func MustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("config: invalid url %q: %v", raw, err))
	}
	return u
}
