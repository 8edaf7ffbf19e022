package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values. The PAT token is usually
// supplied this way (injected by the MCP client's server configuration)
// rather than written to disk.
const (
	EnvGatewayURL = "DATAGROOM_GATEWAY_URL"
	EnvPATToken   = "DATAGROOM_PAT_TOKEN"
	EnvListenAddr = "DATAGROOM_LISTEN_ADDR"
	EnvLogLevel   = "DATAGROOM_LOG_LEVEL"
	EnvTimeout    = "DATAGROOM_TIMEOUT"
	EnvUser       = "DATAGROOM_USER"
)

// Load reads the YAML configuration file at path, applies environment
// overrides and defaults, and returns a validated [Config].
//
// path may be empty, in which case configuration comes entirely from the
// environment and defaults. A non-empty path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()

		cfg, err = decode(f)
		if err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies environment overrides,
// and validates the result. Useful in tests where configs are constructed
// from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg, err := decode(r)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil // empty file is a valid (all-defaults) config
		}
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays DATAGROOM_* environment variables onto cfg.
// Environment values always win over file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvGatewayURL); v != "" {
		cfg.Gateway.URL = v
	}
	if v := os.Getenv(EnvPATToken); v != "" {
		cfg.Gateway.PATToken = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Server.LogLevel = LogLevel(strings.ToLower(v))
	}
	if v := os.Getenv(EnvUser); v != "" {
		cfg.Gateway.DefaultUser = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Gateway.Timeout = d
		}
	}
}

// Validate checks that cfg contains a coherent set of values and fills in
// defaults for unset optional fields. It returns a joined error listing all
// validation failures found.
//
// A missing PAT token is a startup failure, not a per-call error: the server
// must never come up in a state where it would issue unauthenticated gateway
// calls.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Gateway.PATToken == "" {
		errs = append(errs, fmt.Errorf(
			"gateway.pat_token is required; set it in the config file or via %s "+
				"(generate one in Datagroom Settings > Personal Access Tokens)", EnvPATToken))
	}

	if cfg.Gateway.URL == "" {
		cfg.Gateway.URL = DefaultGatewayURL
	}
	if !strings.HasPrefix(cfg.Gateway.URL, "http://") && !strings.HasPrefix(cfg.Gateway.URL, "https://") {
		errs = append(errs, fmt.Errorf("gateway.url %q must start with http:// or https://", cfg.Gateway.URL))
	}
	cfg.Gateway.URL = strings.TrimRight(cfg.Gateway.URL, "/")

	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = DefaultTimeout
	}
	if cfg.Gateway.DefaultUser == "" {
		cfg.Gateway.DefaultUser = DefaultUserName
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = DefaultLogLevel
	}
	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	return errors.Join(errs...)
}
