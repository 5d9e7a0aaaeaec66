package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher reloads a config file when it changes on disk and hands the new
// value to a callback.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *logrus.Logger
	onChange func(*Config)

	mu      sync.RWMutex
	current *Config

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher loads path and starts watching its directory. A nil logger
// falls back to the logrus standard logger. The directory is
// watched rather than the file so editors that replace the file on save are
// picked up.
func NewWatcher(path string, logger *logrus.Logger, onChange func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fw,
		logger:   logger,
		onChange: onChange,
		current:  cfg,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	target := filepath.Clean(w.path)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	// A save is often a truncate followed by a write; skip the empty state.
	if info, err := os.Stat(w.path); err == nil && info.Size() == 0 {
		return
	}

	cfg, err := LoadConfig(w.path)
	if err != nil {
		// Keep serving the last good config.
		w.logger.WithError(err).WithField("path", w.path).Warn("Failed to reload config")
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.WithFields(logrus.Fields{
		"path":      w.path,
		"log_level": cfg.LogLevel,
	}).Info("Config reloaded")

	if w.onChange != nil {
		w.onChange(cfg)
	}
}
