package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/storage"
)

// debounce window for coalescing bursts of filesystem events.
const watchDebounce = 200 * time.Millisecond

// Watch observes the workspace and re-reports drift whenever .xs files
// change, until ctx is cancelled. It is purely local: no remote call is
// ever issued. New directories created at runtime are added to the watch
// list automatically.
func (e *Engine) Watch(ctx context.Context, onChange func(*StatusResult)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, e.root); err != nil {
		return err
	}

	e.log.Info("watch: started", slog.String("root", e.root))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			e.log.Info("watch: stopped")
			return nil

		case <-timerCh:
			result, err := e.Status()
			if err != nil {
				e.log.Warn("watch: status failed", slog.String("error", err.Error()))
				continue
			}
			if onChange != nil {
				onChange(result)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						e.log.Warn("watch: add dir failed",
							slog.String("path", ev.Name), slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, storage.ScriptExt) {
				continue
			}
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.log.Warn("watch: error", slog.String("error", err.Error()))
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		// The metadata directory changes on every store save; watching it
		// would loop the debounce timer forever.
		if d.Name() == ".raido" {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
