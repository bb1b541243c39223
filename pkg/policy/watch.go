package policy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// IsDocument reports whether path has a policy document extension.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".yml", ".yaml":
		return true
	}
	return false
}

// LoadDir loads every document in dir in name order. A failing document is
// reported and does not stop the rest.
func (l *Loader) LoadDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read policy directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !IsDocument(entry.Name()) {
			continue
		}
		if _, err := l.LoadFile(ctx, filepath.Join(dir, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Watch loads dir and then reloads each document written or created in it
// until ctx is done. onLoad, if set, is called after each attempt.
func (l *Loader) Watch(ctx context.Context, dir string, onLoad func(path string, res *LoadResult, err error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if err := l.LoadDir(ctx, dir); err != nil {
		l.logger.Warn("initial policy load incomplete", "dir", dir, "error", err)
	}
	l.logger.Info("watching policy directory", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !IsDocument(event.Name) {
				continue
			}
			res, err := l.LoadFile(ctx, event.Name)
			if err != nil {
				l.logger.Error("policy reload failed", "file", event.Name, "error", err)
			}
			if onLoad != nil {
				onLoad(event.Name, res, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("policy watcher error", "error", err)
		}
	}
}
