package routing

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchRules watches the rules file and swaps the snapshot on change, so
// rule edits take effect without a restart and without racing in-flight
// captures. The parent directory is watched rather than the file itself
// because editors typically replace the file via rename. Reloads are
// debounced; a file that fails to parse leaves the previous snapshot live.
func WatchRules(ctx context.Context, path string, snap *Snapshot, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("rules watcher: started", slog.String("path", abs))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("rules watcher: stopped")
			return nil

		case <-reloadCh:
			rules, loadErr := LoadRules(abs, logger)
			if loadErr != nil {
				logger.Warn("rules watcher: reload failed, keeping previous rules",
					slog.String("error", loadErr.Error()))
				continue
			}
			snap.Store(rules)
			logger.Info("rules watcher: rules reloaded", slog.Int("count", len(rules)))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("rules watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
