package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// watchSuites calls onChange once per burst of suite file changes under
// the directories named by patterns, until ctx is done.
func watchSuites(ctx context.Context, patterns []string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(patterns)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		logger.Debug("watching directory", "dir", dir)
	}

	ticker := time.NewTicker(debounce / 3)
	defer ticker.Stop()

	var pending bool
	var lastEvent time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSuiteEvent(event) {
				continue
			}
			logger.Debug("suite file changed", "path", event.Name, "op", event.Op.String())
			pending = true
			lastEvent = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-ticker.C:
			if pending && time.Since(lastEvent) >= debounce {
				pending = false
				onChange()
			}
		}
	}
}

// watchDirs returns the directories to watch for patterns. Editors often
// save by renaming a temp file, so directories are watched rather than
// files. Patterns with ** watch every directory below their base.
func watchDirs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	add := func(dir string) {
		if dir == "" {
			dir = "."
		}
		seen[filepath.Clean(dir)] = true
	}

	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[{") {
			add(filepath.Dir(p))
			continue
		}
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		base = filepath.FromSlash(base)
		if !strings.Contains(p, "**") {
			add(base)
			continue
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", base, err)
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func isSuiteEvent(event fsnotify.Event) bool {
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".yaml", ".yml", ".json":
	default:
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
