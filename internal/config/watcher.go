package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/sitwatch/internal/logger"
)

// ChangeHandler receives the freshly loaded config after the file changes.
type ChangeHandler func(ctx context.Context, cfg *Config)

// Watcher reloads a config file whenever it is written.
type Watcher struct {
	path    string
	handler ChangeHandler
	logger  logger.Logger
	watcher *fsnotify.Watcher
}

// NewWatcher watches the directory holding path so that editors which
// replace the file (rename + create) are still observed.
func NewWatcher(path string, handler ChangeHandler, log logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &Watcher{
		path:    filepath.Clean(path),
		handler: handler,
		logger:  log,
		watcher: fw,
	}, nil
}

// Start blocks until ctx is done, invoking the handler for every valid reload.
// Invalid files are logged and ignored so the running config stays in effect.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Debug(ctx, "Config watcher started: %s", w.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn(ctx, "Ignoring config reload: %v", err)
				continue
			}
			w.logger.Info(ctx, "Config reloaded: %s", w.path)
			w.handler(ctx, cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Config watcher error: %v", err)
		}
	}
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
