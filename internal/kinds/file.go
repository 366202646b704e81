package kinds

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"
)

// File is the on-disk layout of a kinds file:
//
//	kinds:
//	  - kind: ServiceMonitor.monitoring.coreos.com
//	    namespaced: true
type File struct {
	Kinds []Entry `yaml:"kinds"`
}

// FileSource reads registry entries from a YAML kinds file.
type FileSource struct {
	Path string
}

// Kinds implements Source.
func (s FileSource) Kinds(context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read kinds file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse kinds file %s: %w", s.Path, err)
	}

	return f.Kinds, nil
}

// WatchFile loads path into registry and reloads it whenever the file is
// written or re-created, until ctx is done. A reload that fails to parse is
// logged and the previous table stays in place. onReload, when non-nil, is
// called after every successful load.
func WatchFile(ctx context.Context, path string, registry *Registry, logger *slog.Logger, onReload func([]Entry)) error {
	if logger == nil {
		logger = slog.Default()
	}
	source := FileSource{Path: path}

	load := func() error {
		entries, err := source.Kinds(ctx)
		if err != nil {
			return err
		}
		if err := registry.Replace(entries); err != nil {
			return err
		}
		if onReload != nil {
			onReload(registry.Entries())
		}
		return nil
	}

	if err := load(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warn("failed to close kinds file watcher", slog.String("error", err.Error()))
		}
	}()

	// Watch the directory: editors often replace the file instead of
	// writing it in place, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := load(); err != nil {
				logger.WarnContext(ctx, "failed to reload kinds file",
					slog.String("path", path), slog.String("error", err.Error()))
				continue
			}
			logger.InfoContext(ctx, "reloaded kinds file",
				slog.String("path", path), slog.Int("kinds", registry.Len()))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "kinds file watcher error", slog.String("error", err.Error()))
		}
	}
}
