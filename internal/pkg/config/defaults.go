package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "127.0.0.1"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = 10 << 20

	// Bridge defaults
	DefaultOperationTTL    = 24 * time.Hour
	DefaultLinkTTL         = 5 * time.Minute
	DefaultCleanupInterval = 1 * time.Minute
	DefaultOutboxCapacity  = 64

	// Client defaults
	DefaultBridgeURL     = "http://127.0.0.1:8080"
	DefaultClientTimeout = 10 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultInstalledSchemes are the probes the bridge answers positively by default.
var DefaultInstalledSchemes = []string{"weixin", "weixinULAPI", "sinaweibo", "weibosdk3.3"}

func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Host: Host{
			InstalledSchemes: append([]string(nil), DefaultInstalledSchemes...),
		},
		Bridge: Bridge{
			OperationTTL:    DefaultOperationTTL,
			LinkTTL:         DefaultLinkTTL,
			CleanupInterval: DefaultCleanupInterval,
			OutboxCapacity:  DefaultOutboxCapacity,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func defaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BridgeURL: DefaultBridgeURL,
		Timeout:   DefaultClientTimeout,
		Logging: Logging{
			Level:  "warn",
			Format: "text",
		},
	}
}
