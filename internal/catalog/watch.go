package catalog

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/logger"
)

// DefaultDebounce collapses bursts of editor writes into one sync
const DefaultDebounce = 300 * time.Millisecond

// Watch calls onChange after changes under skillsDir settle, until ctx is
// done. onChange always runs on the calling goroutine, so two runs never
// overlap.
func Watch(ctx context.Context, skillsDir string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	if err := addTree(watcher, skillsDir); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()

	log := logger.G(ctx).WithField("dir", skillsDir)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.WithField("event", event.String()).Debug("change detected")
			if event.Has(fsnotify.Create) {
				// New skill directories need their own watch
				_ = addTree(watcher, event.Name)
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case <-timer.C:
			onChange()
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return errors.Wrapf(watcher.Add(path), "failed to watch %s", path)
		}
		return nil
	})
}
