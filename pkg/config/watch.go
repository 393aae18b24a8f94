package config

import (
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file (and, optionally, the token/proxy store
// files) for out-of-band edits and calls ReloadConfig on change, debounced
// so a burst of writes (e.g. an editor's save-via-rename) triggers one
// reload. Every event reloads the YAML config only: the token/proxy stores
// are not reloaded, and the hash compare-and-swap with change notification
// for the operator text blob lives in TextBlob, not here.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	path    string
	debounce time.Duration
	stop    chan struct{}
}

// NewWatcher builds a Watcher over the given config file path. Additional
// paths (token/proxy store files) may be added with Add before Start.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: fw, logger: logger.With("component", "config.watcher"), path: path, debounce: debounce, stop: make(chan struct{})}, nil
}

// Add watches an additional file for changes.
func (w *Watcher) Add(path string) error {
	return w.watcher.Add(path)
}

// Start begins watching in the background. It reloads the config singleton
// on every debounced change event; reload failures are logged and do not
// replace the live config.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.path); err != nil {
		return err
	}
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	reload := func() {
		if err := ReloadConfig(w.path); err != nil {
			w.logger.Error("config reload failed", "error", err)
			return
		}
		w.logger.Info("config reloaded", "path", w.path)
	}
	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

// Stop terminates the background watch goroutine and releases the
// underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	close(w.stop)
	return w.watcher.Close()
}
