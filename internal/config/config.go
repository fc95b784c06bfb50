// ABOUTME: Configuration loading and parsing for the mokai routing gateway
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/smartnetguru/mokai/internal/connector"
)

// Config represents the complete gateway configuration
type Config struct {
	Server       ServerConfig      `yaml:"server" toml:"server"`
	Database     DatabaseConfig    `yaml:"database" toml:"database"`
	Auth         AuthConfig        `yaml:"auth" toml:"auth"`
	Logging      LoggingConfig     `yaml:"logging" toml:"logging"`
	Metrics      MetricsConfig     `yaml:"metrics" toml:"metrics"`
	Reload       ReloadConfig      `yaml:"reload" toml:"reload"`
	Delivery     DeliveryConfig    `yaml:"delivery" toml:"delivery"`
	Routing      RoutingConfig     `yaml:"routing" toml:"routing"`
	Connections  []ConnectorConfig `yaml:"connections" toml:"connections"`
	Applications []ConnectorConfig `yaml:"applications" toml:"applications"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"-" toml:"-"`

	ShutdownTimeoutRaw string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// DatabaseConfig holds the routing journal location. Empty disables the journal.
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AuthConfig holds API authentication configuration. Empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" toml:"jwt_secret"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// ReloadConfig controls hot reload of the connector catalog
type ReloadConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Debounce time.Duration `yaml:"-" toml:"-"`

	DebounceRaw string `yaml:"debounce" toml:"debounce"`
}

// DeliveryConfig controls whether the gateway hands routed messages to their
// connector, and how long delivered message ids are remembered.
type DeliveryConfig struct {
	Enabled      bool          `yaml:"enabled" toml:"enabled"`
	DedupeWindow time.Duration `yaml:"-" toml:"-"`
	DedupeSize   int           `yaml:"dedupe_size" toml:"dedupe_size"`

	DedupeWindowRaw string `yaml:"dedupe_window" toml:"dedupe_window"`
}

// RoutingConfig holds the endpoint URIs of both routers
type RoutingConfig struct {
	Connections  RouterConfig `yaml:"connections" toml:"connections"`
	Applications RouterConfig `yaml:"applications" toml:"applications"`
}

// RouterConfig holds the endpoint URIs of one router. Empty values use the
// router defaults.
type RouterConfig struct {
	URIPrefix     string `yaml:"uri_prefix" toml:"uri_prefix"`
	UnroutableURI string `yaml:"unroutable_uri" toml:"unroutable_uri"`
}

// ConnectorConfig describes one connector service
type ConnectorConfig struct {
	ID        string           `yaml:"id" toml:"id"`
	Type      string           `yaml:"type" toml:"type"`
	Priority  int              `yaml:"priority" toml:"priority"`
	Supports  []string         `yaml:"supports" toml:"supports"` // message types; empty means all
	Acceptors []AcceptorConfig `yaml:"acceptors" toml:"acceptors"`
}

// Acceptor types
const (
	AcceptorAlways   = "always"
	AcceptorEquals   = "equals"
	AcceptorRegexp   = "regexp"
	AcceptorGlob     = "glob"
	AcceptorJSONPath = "jsonpath"
	AcceptorAnd      = "and"
	AcceptorOr       = "or"
	AcceptorNot      = "not"
)

// AcceptorConfig describes one acceptor. Composite types nest children in
// Acceptors; "not" takes exactly one child.
type AcceptorConfig struct {
	Type      string           `yaml:"type" toml:"type"`
	Field     string           `yaml:"field" toml:"field"`
	Pattern   string           `yaml:"pattern" toml:"pattern"`
	Path      string           `yaml:"path" toml:"path"`
	Value     string           `yaml:"value" toml:"value"`
	Acceptors []AcceptorConfig `yaml:"acceptors" toml:"acceptors"`
}

// Defaults
const (
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultMetricsPath     = "/metrics"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultReloadDebounce  = 500 * time.Millisecond
	DefaultDedupeWindow    = 5 * time.Minute
	DefaultDedupeSize      = 10000
)

// DefaultPath returns the path to the gateway config file.
// Priority: MOKAI_CONFIG env var > XDG_CONFIG_HOME/mokai/gateway.yaml > ~/.config/mokai/gateway.yaml
func DefaultPath() string {
	if envPath := os.Getenv("MOKAI_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "mokai", "gateway.yaml")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data, strings.EqualFold(filepath.Ext(path), ".toml"))
}

// Parse decodes configuration bytes. isTOML selects the TOML decoder.
func Parse(data []byte, isTOML bool) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if isTOML {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Reload.Debounce == 0 {
		cfg.Reload.Debounce = DefaultReloadDebounce
	}
	if cfg.Delivery.DedupeWindow == 0 {
		cfg.Delivery.DedupeWindow = DefaultDedupeWindow
	}
	if cfg.Delivery.DedupeSize == 0 {
		cfg.Delivery.DedupeSize = DefaultDedupeSize
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Delivery.DedupeSize < 0 {
		return fmt.Errorf("delivery.dedupe_size must not be negative")
	}

	if err := validateConnectors("connections", c.Connections); err != nil {
		return err
	}
	return validateConnectors("applications", c.Applications)
}

func validateConnectors(section string, connectors []ConnectorConfig) error {
	seen := make(map[string]bool, len(connectors))
	for i, cc := range connectors {
		where := fmt.Sprintf("%s[%d]", section, i)
		if cc.ID == "" {
			return fmt.Errorf("%s.id is required", where)
		}
		if seen[cc.ID] {
			return fmt.Errorf("%s: duplicate connector id %q", where, cc.ID)
		}
		seen[cc.ID] = true

		if !knownConnectorType(cc.Type) {
			return fmt.Errorf("%s: unknown connector type %q", where, cc.Type)
		}

		for j, ac := range cc.Acceptors {
			if err := validateAcceptor(fmt.Sprintf("%s.acceptors[%d]", where, j), ac); err != nil {
				return err
			}
		}
	}
	return nil
}

func knownConnectorType(t string) bool {
	return slices.Contains(connector.Kinds(), t)
}

func validateAcceptor(where string, ac AcceptorConfig) error {
	switch ac.Type {
	case AcceptorAlways:
	case AcceptorEquals:
		if ac.Field == "" {
			return fmt.Errorf("%s: equals requires field", where)
		}
	case AcceptorRegexp, AcceptorGlob:
		if ac.Field == "" || ac.Pattern == "" {
			return fmt.Errorf("%s: %s requires field and pattern", where, ac.Type)
		}
	case AcceptorJSONPath:
		if ac.Path == "" {
			return fmt.Errorf("%s: jsonpath requires path", where)
		}
	case AcceptorAnd, AcceptorOr:
		if len(ac.Acceptors) == 0 {
			return fmt.Errorf("%s: %s requires at least one acceptor", where, ac.Type)
		}
	case AcceptorNot:
		if len(ac.Acceptors) != 1 {
			return fmt.Errorf("%s: not requires exactly one acceptor", where)
		}
	default:
		return fmt.Errorf("%s: unknown acceptor type %q", where, ac.Type)
	}

	for i, child := range ac.Acceptors {
		if err := validateAcceptor(fmt.Sprintf("%s.acceptors[%d]", where, i), child); err != nil {
			return err
		}
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Server.ShutdownTimeoutRaw != "" {
		cfg.Server.ShutdownTimeout, err = time.ParseDuration(cfg.Server.ShutdownTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing shutdown_timeout %q: %w", cfg.Server.ShutdownTimeoutRaw, err)
		}
	}

	if cfg.Reload.DebounceRaw != "" {
		cfg.Reload.Debounce, err = time.ParseDuration(cfg.Reload.DebounceRaw)
		if err != nil {
			return fmt.Errorf("parsing debounce %q: %w", cfg.Reload.DebounceRaw, err)
		}
	}

	if cfg.Delivery.DedupeWindowRaw != "" {
		cfg.Delivery.DedupeWindow, err = time.ParseDuration(cfg.Delivery.DedupeWindowRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_window %q: %w", cfg.Delivery.DedupeWindowRaw, err)
		}
	}

	return nil
}
