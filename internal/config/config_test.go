// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  http_addr: "0.0.0.0:9090"
  shutdown_timeout: "5s"

database:
  path: "./journal.db"

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true

reload:
  enabled: true
  debounce: "250ms"

routing:
  connections:
    uri_prefix: "jms:conn-"
    unroutable_uri: "jms:dead"

connections:
  - id: colombia-smsc
    type: console
    priority: 1
    supports: [sms]
    acceptors:
      - type: glob
        field: properties.to
        pattern: "+57*"
      - type: and
        acceptors:
          - type: equals
            field: source
            value: "1234"
          - type: not
            acceptors:
              - type: regexp
                field: body
                pattern: "^test"
  - id: fallback
    type: console
    priority: 10
    acceptors:
      - type: always

applications:
  - id: inbox
    type: console
    acceptors:
      - type: jsonpath
        path: "$.properties.keyword"
  - id: sms-in
    type: receiver
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "gateway.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "./journal.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Reload.Debounce)
	assert.Equal(t, "jms:conn-", cfg.Routing.Connections.URIPrefix)
	assert.Equal(t, "jms:dead", cfg.Routing.Connections.UnroutableURI)
	assert.Empty(t, cfg.Routing.Applications.URIPrefix)

	require.Len(t, cfg.Connections, 2)
	smsc := cfg.Connections[0]
	assert.Equal(t, "colombia-smsc", smsc.ID)
	assert.Equal(t, 1, smsc.Priority)
	assert.Equal(t, []string{"sms"}, smsc.Supports)
	require.Len(t, smsc.Acceptors, 2)
	assert.Equal(t, AcceptorGlob, smsc.Acceptors[0].Type)
	assert.Equal(t, "+57*", smsc.Acceptors[0].Pattern)
	require.Len(t, smsc.Acceptors[1].Acceptors, 2)
	assert.Equal(t, AcceptorNot, smsc.Acceptors[1].Acceptors[1].Type)

	require.Len(t, cfg.Applications, 2)
	assert.Equal(t, "receiver", cfg.Applications[1].Type)
}

func TestLoad_TOML(t *testing.T) {
	content := `
[server]
http_addr = "127.0.0.1:7070"

[routing.applications]
uri_prefix = "jms:app-"

[[connections]]
id = "smsc"
type = "console"
priority = 2
supports = ["sms"]

  [[connections.acceptors]]
  type = "regexp"
  field = "properties.to"
  pattern = "^\\+1"
`
	cfg, err := Load(writeConfig(t, "gateway.toml", content))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7070", cfg.Server.HTTPAddr)
	assert.Equal(t, "jms:app-", cfg.Routing.Applications.URIPrefix)
	require.Len(t, cfg.Connections, 1)
	assert.Equal(t, 2, cfg.Connections[0].Priority)
	require.Len(t, cfg.Connections[0].Acceptors, 1)
	assert.Equal(t, `^\+1`, cfg.Connections[0].Acceptors[0].Pattern)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "gateway.yaml", "connections: []\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.Server.HTTPAddr)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DefaultReloadDebounce, cfg.Reload.Debounce)
	assert.Equal(t, DefaultDedupeWindow, cfg.Delivery.DedupeWindow)
	assert.Equal(t, DefaultDedupeSize, cfg.Delivery.DedupeSize)
	assert.False(t, cfg.Delivery.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Database.Path)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("MOKAI_TEST_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("MOKAI_TEST_DB", "/tmp/journal.db")

	content := `
auth:
  jwt_secret: "${MOKAI_TEST_SECRET}"
database:
  path: "${MOKAI_TEST_DB}"
`
	cfg, err := Load(writeConfig(t, "gateway.yaml", content))
	require.NoError(t, err)

	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Auth.JWTSecret)
	assert.Equal(t, "/tmp/journal.db", cfg.Database.Path)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad yaml",
			content: "connections: [",
			wantErr: "parsing config file",
		},
		{
			name:    "bad duration",
			content: "server:\n  shutdown_timeout: soon\n",
			wantErr: "parsing shutdown_timeout",
		},
		{
			name:    "short secret",
			content: "auth:\n  jwt_secret: short\n",
			wantErr: "jwt_secret",
		},
		{
			name:    "missing id",
			content: "connections:\n  - type: console\n",
			wantErr: "connections[0].id is required",
		},
		{
			name:    "duplicate id",
			content: "connections:\n  - {id: a, type: console}\n  - {id: a, type: console}\n",
			wantErr: "duplicate connector id",
		},
		{
			name:    "unknown connector type",
			content: "applications:\n  - {id: a, type: smpp}\n",
			wantErr: "unknown connector type",
		},
		{
			name:    "unknown acceptor type",
			content: "connections:\n  - id: a\n    type: console\n    acceptors:\n      - type: maybe\n",
			wantErr: "unknown acceptor type",
		},
		{
			name:    "regexp without pattern",
			content: "connections:\n  - id: a\n    type: console\n    acceptors:\n      - {type: regexp, field: body}\n",
			wantErr: "requires field and pattern",
		},
		{
			name:    "not with two children",
			content: "connections:\n  - id: a\n    type: console\n    acceptors:\n      - type: not\n        acceptors: [{type: always}, {type: always}]\n",
			wantErr: "exactly one acceptor",
		},
		{
			name:    "nested invalid child",
			content: "connections:\n  - id: a\n    type: console\n    acceptors:\n      - type: or\n        acceptors: [{type: jsonpath}]\n",
			wantErr: "acceptors[0].acceptors[0]: jsonpath requires path",
		},
		{
			name:    "bad dedupe window",
			content: "delivery:\n  dedupe_window: forever\n",
			wantErr: "parsing dedupe_window",
		},
		{
			name:    "negative dedupe size",
			content: "delivery:\n  dedupe_size: -1\n",
			wantErr: "dedupe_size",
		},
		{
			name:    "bad log format",
			content: "logging:\n  format: xml\n",
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "gateway.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("MOKAI_CONFIG", "/etc/mokai/custom.yaml")
	assert.Equal(t, "/etc/mokai/custom.yaml", DefaultPath())

	t.Setenv("MOKAI_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "mokai", "gateway.yaml"), DefaultPath())
}
