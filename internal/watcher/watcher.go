package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"assistant/internal/loader"
)

// DefaultDebounce collapses a burst of file events into one reload.
const DefaultDebounce = 2 * time.Second

// Watcher triggers a callback when supported documents in a directory change.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(context.Context) error
	log      *slog.Logger
}

func New(dir string, debounce time.Duration, onChange func(context.Context) error, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{dir: dir, debounce: debounce, onChange: onChange, log: log}
}

// Run watches until ctx is done. Callback errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching documents", "dir", w.dir)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.log.Debug("document changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "err", err)
		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				w.log.Error("reload after document change failed", "err", err)
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !loader.Supported(ev.Name) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
