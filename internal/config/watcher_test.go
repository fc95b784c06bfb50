// ABOUTME: Tests for the config file watcher
// ABOUTME: Verifies debounced reloads and error reporting for invalid edits

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "gateway.yaml", "connections:\n  - {id: a, type: console}\n")

	changes := make(chan *Config, 4)
	errs := make(chan error, 4)
	w, err := NewWatcher(path, WatcherConfig{
		Debounce: 20 * time.Millisecond,
		OnChange: func(cfg *Config) error {
			changes <- cfg
			return nil
		},
		OnError: func(err error) { errs <- err },
	}, nil)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("connections:\n  - {id: b, type: console}\n"), 0644))

	select {
	case cfg := <-changes:
		require.Len(t, cfg.Connections, 1)
		assert.Equal(t, "b", cfg.Connections[0].ID)
	case err := <-errs:
		t.Fatalf("unexpected reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_ReportsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "gateway.yaml", "connections: []\n")

	errs := make(chan error, 4)
	w, err := NewWatcher(path, WatcherConfig{
		Debounce: 20 * time.Millisecond,
		OnChange: func(*Config) error {
			t.Error("OnChange called for invalid config")
			return nil
		},
		OnError: func(err error) { errs <- err },
	}, nil)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("connections:\n  - {id: a, type: fax}\n"), 0644))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "unknown connector type")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := writeConfig(t, "gateway.yaml", "connections: []\n")
	w, err := NewWatcher(path, WatcherConfig{}, nil)
	require.NoError(t, err)
	w.Start()

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
