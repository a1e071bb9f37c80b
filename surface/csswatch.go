package surface

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// cssWatcher re-injects the custom stylesheet when its file changes.
type cssWatcher struct {
	watcher *fsnotify.Watcher
}

// watchCSS watches the parent directory rather than the file itself so
// editors that replace the file on save (rename + create) keep working.
func watchCSS(ctx context.Context, path, inlineCSS string, applier Applier, logger *slog.Logger) (*cssWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					logger.Warn("surface: css reload read", "error", err)
					continue
				}
				css := inlineCSS
				if css != "" {
					css += "\n"
				}
				css += string(data)
				if err := applier.InjectCSS(ctx, css); err != nil {
					logger.Warn("surface: css reload inject", "error", err)
					continue
				}
				logger.Info("surface: custom css reloaded", "path", path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("surface: css watch", "error", err)
			}
		}
	}()

	return &cssWatcher{watcher: w}, nil
}

func (c *cssWatcher) stop() {
	c.watcher.Close()
}
