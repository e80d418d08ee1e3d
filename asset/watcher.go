package asset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change to
// the manifest before reloading it.
const DefaultDebounce = 250 * time.Millisecond

// Watch reloads the manifest whenever it changes until ctx is done. Rapid
// saves are coalesced into one reload after debounce. The manifest's
// directory is watched so editors that replace the file are handled.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	if r.config.Manifest == "" {
		return fmt.Errorf("asset: no manifest to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("asset: create watcher: %w", err)
	}
	defer w.Close()

	manifest, err := filepath.Abs(r.config.Manifest)
	if err != nil {
		return fmt.Errorf("asset: resolve manifest path: %w", err)
	}
	if err := w.Add(filepath.Dir(manifest)); err != nil {
		return fmt.Errorf("asset: watch %s: %w", filepath.Dir(manifest), err)
	}
	r.config.Logger.Debug("watching asset manifest", "path", manifest)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != manifest {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.config.Logger.Error("asset watcher error", "error", err)

		case <-timer.C:
			if err := r.Reload(); err != nil {
				r.config.Logger.Warn("asset manifest reload failed, keeping previous entries", "error", err)
			}
		}
	}
}
