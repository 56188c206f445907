package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchCatalog reloads the catalog file into holder whenever it changes.
// The directory is watched rather than the file so editors that replace
// the file on save are picked up. A file that fails to parse leaves the
// previous catalog in place, and so does one with no entries. Blocks
// until ctx is done.
func WatchCatalog(ctx context.Context, path string, holder *CatalogHolder, log *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating catalog watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			c, err := LoadCatalog(abs)
			if err != nil {
				log.Warn("catalog reload failed, keeping previous", zap.String("path", abs), zap.Error(err))
				continue
			}
			// a truncated file mid-write parses as an empty catalog
			if c.Len() == 0 {
				log.Warn("catalog reload found no assessments, keeping previous", zap.String("path", abs))
				continue
			}
			holder.Store(c)
			log.Info("catalog reloaded", zap.String("path", abs), zap.Int("assessments", c.Len()))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
