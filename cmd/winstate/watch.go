package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchSettings prints every change applied to the settings file until ctx
// is cancelled. The parent directory is watched because saves replace the
// file through a rename.
func watchSettings(ctx context.Context, w io.Writer) error {
	snap, err := readSnapshot()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(snap.path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	fmt.Fprintf(w, "Watching %s (%d entries)\n", path, len(snap.values))
	last := snap.values

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			next, err := readSnapshot()
			if err != nil {
				logger.Debug("skipping unreadable settings", "err", err)
				continue
			}
			for _, line := range diffValues(last, next.values) {
				fmt.Fprintln(w, line)
			}
			last = next.values
		}
	}
}

// diffValues describes how after differs from before, one line per key in
// key order.
func diffValues(before, after map[string]any) []string {
	merged := make(map[string]any, len(before)+len(after))
	for k, v := range before {
		merged[k] = v
	}
	for k, v := range after {
		merged[k] = v
	}

	var lines []string
	for _, k := range sortedKeys(merged) {
		old, had := before[k]
		cur, has := after[k]
		switch {
		case had && !has:
			lines = append(lines, fmt.Sprintf("- %s", k))
		case !had && has:
			lines = append(lines, fmt.Sprintf("+ %s = %s", k, formatValue(cur)))
		case old != cur:
			lines = append(lines, fmt.Sprintf("~ %s: %s -> %s", k, formatValue(old), formatValue(cur)))
		}
	}
	return lines
}
