package httptransport

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes a manager connection:
//
//	url: https://vmanage.example.com
//	port: 8443
//	timeout: 30s
//	headers:
//	  Cookie: JSESSIONID=${VMANAGE_SESSION}
//	  X-XSRF-TOKEN: ${VMANAGE_TOKEN}
//	api_version: "20.12"
//	role: provider
type Config struct {
	URL                string            `yaml:"url"`
	Port               int               `yaml:"port,omitempty"`
	BasePath           string            `yaml:"base_path,omitempty"`
	Timeout            time.Duration     `yaml:"timeout,omitempty"`
	InsecureSkipVerify bool              `yaml:"insecure_skip_verify,omitempty"`
	UserAgent          string            `yaml:"user_agent,omitempty"`
	Headers            map[string]string `yaml:"headers,omitempty"`
	APIVersion         string            `yaml:"api_version,omitempty"`
	Role               string            `yaml:"role,omitempty"`
	LogLevel           string            `yaml:"log_level,omitempty"`
	LogFormat          string            `yaml:"log_format,omitempty"`
}

// LoadConfig reads a YAML config file. ${VAR} references are replaced by
// environment variables before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses YAML config data.
func ParseConfig(data []byte) (*Config, error) {
	expanded, err := ExpandEnvStrict(string(data))
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.BasePath == "" {
		c.BasePath = "/dataservice"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("config: url is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: negative timeout")
	}
	if _, err := c.BaseURL(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}

// BaseURL returns the manager URL with the configured port. A URL without
// scheme defaults to https.
func (c *Config) BaseURL() (string, error) {
	raw := c.URL
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid url %q", c.URL)
	}
	if c.Port != 0 {
		u.Host = u.Hostname() + ":" + strconv.Itoa(c.Port)
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}

// Logger returns a logger writing to w with the configured format and
// level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(c.LogLevel)}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel converts a level string to slog.Level.
// Defaults to slog.LevelInfo for unrecognized values.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// ExpandEnvStrict expands ${VAR} references and errors if any env var is missing.
func ExpandEnvStrict(input string) (string, error) {
	var missing error
	out := envPattern.ReplaceAllStringFunc(input, func(m string) string {
		name := envPattern.FindStringSubmatch(m)[1]
		val, ok := os.LookupEnv(name)
		if !ok && missing == nil {
			missing = fmt.Errorf("missing env var %s", name)
		}
		return val
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}
