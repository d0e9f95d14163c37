package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadFn observes the result of each reload attempt.
type ReloadFn func(b *Base, err error)

// Watcher reloads a knowledge base file into a Holder when it changes.
// An invalid file is reported and the live base is left untouched.
type Watcher struct {
	path     string
	holder   *Holder
	log      *zap.Logger
	onReload ReloadFn
	debounce time.Duration
}

func NewWatcher(path string, holder *Holder, log *zap.Logger, onReload ReloadFn) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		holder:   holder,
		log:      log.Named("knowledge"),
		onReload: onReload,
		debounce: 200 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start knowledge watcher: %w", err)
	}
	defer fw.Close()

	// Editors often replace files by rename, so watch the directory.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.Reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("knowledge watcher error", zap.Error(err))
		}
	}
}

// Reload loads the file once and swaps it in when it validates.
func (w *Watcher) Reload() {
	b, err := Load(w.path)
	if err != nil {
		w.log.Error("knowledge reload rejected", zap.String("path", w.path), zap.Error(err))
	} else {
		prev := w.holder.Swap(b)
		prevVersion := ""
		if prev != nil {
			prevVersion = prev.Version
		}
		w.log.Info("knowledge base reloaded",
			zap.String("path", w.path),
			zap.String("version", b.Version),
			zap.String("previous_version", prevVersion),
			zap.Int("references", len(b.References)))
	}
	if w.onReload != nil {
		w.onReload(b, err)
	}
}
