package httptransport

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/broady/catalystwan"
)

func TestParseConfig(t *testing.T) {
	t.Setenv("VMANAGE_SESSION", "JSESSIONID=abc")
	t.Setenv("VMANAGE_TOKEN", "xsrf")

	cfg, err := ParseConfig([]byte(`
url: vmanage.example.com
port: 8443
headers:
  Cookie: ${VMANAGE_SESSION}
  X-XSRF-TOKEN: ${VMANAGE_TOKEN}
api_version: "20.12"
role: provider
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Headers["Cookie"] != "JSESSIONID=abc" || cfg.Headers["X-XSRF-TOKEN"] != "xsrf" {
		t.Errorf("expected expanded headers, got %v", cfg.Headers)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.Timeout)
	}
	if cfg.BasePath != catalystwan.DefaultBasePath {
		t.Errorf("expected default base path, got %q", cfg.BasePath)
	}
	base, err := cfg.BaseURL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != "https://vmanage.example.com:8443" {
		t.Errorf("expected https://vmanage.example.com:8443, got %s", base)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"missing url", `port: 443`, "url is required"},
		{"bad port", "url: vmanage\nport: 70000", "invalid port"},
		{"negative timeout", "url: vmanage\ntimeout: -1s", "negative timeout"},
		{"bad log format", "url: vmanage\nlog_format: xml", "unknown log_format"},
		{"missing env", "url: ${CATALYSTWAN_TEST_UNSET}", "missing env var CATALYSTWAN_TEST_UNSET"},
		{"bad yaml", "url: [", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error containing %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vmanage.yaml")
	if err := os.WriteFile(path, []byte("url: http://localhost:8080\ntimeout: 5s\nrole: tenant\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", cfg.Timeout)
	}

	c, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SessionRole() != catalystwan.TenantView {
		t.Errorf("expected tenant role, got %s", c.SessionRole())
	}
	if c.APIVersion() != nil {
		t.Errorf("expected unknown api version, got %s", c.APIVersion())
	}
	if c.baseURL.String() != "http://localhost:8080" {
		t.Errorf("expected http://localhost:8080, got %s", c.baseURL)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewFromConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"api version", Config{URL: "vmanage", APIVersion: "latest"}},
		{"role", Config{URL: "vmanage", Role: "superuser"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFromConfig(&tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("operation", "Client.Server"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("expected info to be filtered")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected json warning, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q): expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}
