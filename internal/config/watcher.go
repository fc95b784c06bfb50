// ABOUTME: Watches the config file and reloads it after debounced changes
// ABOUTME: Handles editors that save by rename or remove-and-create

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smartnetguru/mokai/internal/logging"
)

// WatcherConfig holds configuration for the config watcher
type WatcherConfig struct {
	// Debounce collapses bursts of events into a single reload.
	Debounce time.Duration
	// OnChange receives every successfully loaded config.
	OnChange func(cfg *Config) error
	// OnError receives load and apply failures.
	OnError func(err error)
}

// Watcher monitors a configuration file for changes
type Watcher struct {
	path    string
	cfg     WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu        sync.Mutex
	debouncer *time.Timer
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, cfg WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultReloadDebounce
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	// Watch the directory so atomic saves (write temp + rename) are seen.
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	return &Watcher{
		path:    absPath,
		cfg:     cfg,
		watcher: fsw,
		logger:  logging.Default(logger).With("component", "config-watcher"),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
	w.logger.Info("watching configuration", "file", w.path)
}

// Stop ends watching and cancels any pending reload. Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()

		w.mu.Lock()
		if w.debouncer != nil {
			w.debouncer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
			w.fail(fmt.Errorf("watcher error: %w", err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
		w.logger.Debug("config file changed", "op", event.Op.String())
		w.scheduleReload()
	case event.Has(fsnotify.Remove):
		w.logger.Warn("config file removed", "file", event.Name)
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	w.debouncer = time.AfterFunc(w.cfg.Debounce, func() {
		if err := w.reload(); err != nil {
			w.logger.Error("config reload failed", "error", err)
			w.fail(err)
		}
	})
}

func (w *Watcher) reload() error {
	cfg, err := Load(w.path)
	if err != nil {
		return err
	}
	if w.cfg.OnChange != nil {
		if err := w.cfg.OnChange(cfg); err != nil {
			return fmt.Errorf("applying config: %w", err)
		}
	}
	w.logger.Info("configuration reloaded", "file", w.path)
	return nil
}

func (w *Watcher) fail(err error) {
	if w.cfg.OnError != nil {
		w.cfg.OnError(err)
	}
}
