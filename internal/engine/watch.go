package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veland/grimsync/internal/models"
)

// debounceWindow is how long the cache file must stay quiet before a
// change triggers a cycle. The upstream app rewrites the cache in bursts.
const debounceWindow = 2 * time.Second

// Watch monitors the cache file and runs a sync cycle after changes
// settle. The parent directory is watched rather than the file itself,
// so atomic replace-by-rename updates are still observed. Blocks until
// ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, cachePath string, load func() ([]models.Document, error), onCycle func(Summary)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("engine: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(cachePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("engine: watch %s: %w", dir, err)
	}
	base := filepath.Base(cachePath)
	e.logger.Info("watcher: started", slog.String("path", cachePath))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(debounceWindow)
		timerCh = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			e.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			timerCh = nil
			e.runTriggered(ctx, load, onCycle)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			e.logger.Debug("watcher: cache changed", slog.String("op", ev.Op.String()))
			schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// runTriggered loads the cache and runs one cycle. Failures are logged
// and swallowed; the watcher keeps running.
func (e *Engine) runTriggered(ctx context.Context, load func() ([]models.Document, error), onCycle func(Summary)) {
	docs, err := load()
	if err != nil {
		e.logger.Warn("watcher: cache load failed", slog.String("error", err.Error()))
		return
	}
	summary, err := e.RunCycle(ctx, docs)
	if err != nil {
		e.logger.Warn("watcher: cycle aborted", slog.String("error", err.Error()))
		return
	}
	if onCycle != nil {
		onCycle(summary)
	}
}
