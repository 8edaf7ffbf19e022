// Package config provides the configuration schema and loader for the
// Datagroom MCP server.
package config

import "time"

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for the Datagroom MCP server.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader],
// with DATAGROOM_* environment variables taking precedence over file values.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Gateway GatewayConfig `yaml:"gateway"`
}

// ServerConfig holds network and logging settings for the MCP server itself.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8000").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// GatewayConfig describes how to reach the Datagroom gateway.
type GatewayConfig struct {
	// URL is the base URL of the gateway (e.g., "http://localhost:8887").
	URL string `yaml:"url"`

	// PATToken is the personal access token presented as a bearer credential
	// on every gateway call. Required; the server refuses to start without it.
	// Never logged or echoed in tool output.
	PATToken string `yaml:"pat_token"`

	// Timeout bounds each gateway call. Calls exceeding it are reported as
	// transport errors.
	Timeout time.Duration `yaml:"timeout"`

	// DefaultUser is the dsUser path segment used when a tool call does not
	// supply one. The gateway applies its ACLs against this name.
	DefaultUser string `yaml:"default_user"`
}

// Defaults applied by [Validate] when the corresponding field is unset.
const (
	DefaultListenAddr = ":8000"
	DefaultGatewayURL = "http://localhost:8887"
	DefaultTimeout    = 30 * time.Second
	DefaultUserName   = "mcp-user"
	DefaultLogLevel   = LogInfo
)
