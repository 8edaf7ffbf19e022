package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/datagroom-ai/datagroom-mcp/internal/app"
	"github.com/datagroom-ai/datagroom-mcp/internal/config"
	"github.com/datagroom-ai/datagroom-mcp/internal/gateway"
)

func TestNew_MissingCredentialFailsFast(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Server:  config.ServerConfig{ListenAddr: ":0"},
		Gateway: config.GatewayConfig{URL: "http://localhost:1", Timeout: time.Second},
	}

	_, err := app.New(cfg, "test")
	if !errors.Is(err, gateway.ErrMissingToken) {
		t.Errorf("New without a PAT token = %v, want ErrMissingToken", err)
	}
}

func TestNew_WiresAllSubsystems(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Server: config.ServerConfig{ListenAddr: ":0"},
		Gateway: config.GatewayConfig{
			URL:         "http://localhost:8887",
			PATToken:    "dgpat_test",
			Timeout:     time.Second,
			DefaultUser: "mcp-user",
		},
	}

	a, err := app.New(cfg, "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a == nil {
		t.Fatal("New returned nil App")
	}
}
