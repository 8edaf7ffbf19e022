package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/datagroom-ai/datagroom-mcp/internal/config"
)

func TestLoadFromReader_MissingToken(t *testing.T) {
	yaml := `
gateway:
  url: http://localhost:8887
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing PAT token, got nil")
	}
	if !strings.Contains(err.Error(), "pat_token") {
		t.Errorf("error should mention pat_token, got: %v", err)
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	yaml := `
gateway:
  pat_token: dgpat_test
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Gateway.URL != config.DefaultGatewayURL {
		t.Errorf("gateway URL = %q, want default %q", cfg.Gateway.URL, config.DefaultGatewayURL)
	}
	if cfg.Gateway.Timeout != config.DefaultTimeout {
		t.Errorf("timeout = %v, want %v", cfg.Gateway.Timeout, config.DefaultTimeout)
	}
	if cfg.Gateway.DefaultUser != config.DefaultUserName {
		t.Errorf("default user = %q, want %q", cfg.Gateway.DefaultUser, config.DefaultUserName)
	}
	if cfg.Server.ListenAddr != config.DefaultListenAddr {
		t.Errorf("listen addr = %q, want %q", cfg.Server.ListenAddr, config.DefaultListenAddr)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("log level = %q, want %q", cfg.Server.LogLevel, config.LogInfo)
	}
}

func TestLoadFromReader_EnvOverridesFile(t *testing.T) {
	t.Setenv(config.EnvPATToken, "dgpat_from_env")
	t.Setenv(config.EnvGatewayURL, "https://gw.example.com")
	t.Setenv(config.EnvTimeout, "5s")

	yaml := `
gateway:
  url: http://localhost:8887
  pat_token: dgpat_from_file
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Gateway.PATToken != "dgpat_from_env" {
		t.Errorf("token = %q, want env value", cfg.Gateway.PATToken)
	}
	if cfg.Gateway.URL != "https://gw.example.com" {
		t.Errorf("url = %q, want env value", cfg.Gateway.URL)
	}
	if cfg.Gateway.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Gateway.Timeout)
	}
}

func TestLoadFromReader_InvalidLogLevel(t *testing.T) {
	yaml := `
server:
  log_level: verbose
gateway:
  pat_token: dgpat_test
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestLoadFromReader_InvalidURLScheme(t *testing.T) {
	yaml := `
gateway:
  url: localhost:8887
  pat_token: dgpat_test
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for URL without scheme, got nil")
	}
	if !strings.Contains(err.Error(), "http://") {
		t.Errorf("error should mention the expected scheme, got: %v", err)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	yaml := `
gateway:
  pat_token: dgpat_test
  retries: 3
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReader_TrailingSlashTrimmed(t *testing.T) {
	yaml := `
gateway:
  url: http://localhost:8887/
  pat_token: dgpat_test
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if strings.HasSuffix(cfg.Gateway.URL, "/") {
		t.Errorf("url = %q, trailing slash should be trimmed", cfg.Gateway.URL)
	}
}
