package cmd

import (
	"context"
	"path/filepath"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/coldguard/internal/config"
	"github.com/teemow/coldguard/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	cfg := config.Config{
		Router: config.RouterConfig{
			DefaultProvider: "anthropic",
		},
		Storage: config.StorageConfig{
			Path: filepath.Join(t.TempDir(), "coldguard.db"),
		},
	}

	sc, err := server.NewServerContext(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() {
		_ = sc.Shutdown()
	})
	return sc
}

func TestRegisterAllTools(t *testing.T) {
	tests := []struct {
		name      string
		readOnly  bool
		wantTools int
	}{
		{name: "write mode", readOnly: false, wantTools: 8},
		{name: "read-only mode", readOnly: true, wantTools: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestServerContext(t)
			mcpSrv := mcpserver.NewMCPServer("coldguard-test", "0.0.0",
				mcpserver.WithToolCapabilities(true),
				mcpserver.WithResourceCapabilities(false, false),
			)

			if err := registerAllTools(mcpSrv, sc, tt.readOnly); err != nil {
				t.Fatalf("registerAllTools() error = %v", err)
			}

			if got := len(mcpSrv.ListTools()); got != tt.wantTools {
				t.Errorf("registered %d tools, want %d", got, tt.wantTools)
			}
		})
	}
}

func TestLoadMetricsEnvVars(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantEnabled bool
		wantAddr    string
	}{
		{
			name:        "no env vars keeps defaults",
			env:         nil,
			wantEnabled: true,
			wantAddr:    ":9090",
		},
		{
			name:        "env disables metrics",
			env:         map[string]string{"METRICS_ENABLED": "false"},
			wantEnabled: false,
			wantAddr:    ":9090",
		},
		{
			name:        "env overrides addr",
			env:         map[string]string{"METRICS_ADDR": ":9191"},
			wantEnabled: true,
			wantAddr:    ":9191",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cmd := newServeCmd()
			cfg := MetricsConfig{Enabled: true, Addr: ":9090"}
			loadMetricsEnvVars(cmd, &cfg)

			if cfg.Enabled != tt.wantEnabled {
				t.Errorf("Enabled = %v, want %v", cfg.Enabled, tt.wantEnabled)
			}
			if cfg.Addr != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", cfg.Addr, tt.wantAddr)
			}
		})
	}
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		tool string
		want string
	}{
		{"coldemail_classify_message", "Classification Tools"},
		{"coldemail_classify_content", "Classification Tools"},
		{"coldemail_get_settings", "Settings Tools"},
		{"coldemail_update_settings", "Settings Tools"},
		{"coldemail_list_senders", "Sender Tools"},
		{"coldemail_mark_not_cold", "Sender Tools"},
		{"google_get_auth_url", "Authentication Tools"},
		{"google_save_auth_code", "Authentication Tools"},
		{"something_else", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			if got := getCategoryFromToolName(tt.tool); got != tt.want {
				t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.tool, got, tt.want)
			}
		})
	}
}
