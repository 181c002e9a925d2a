package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"depsorder/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// manifestNames are the toolchain files whose changes invalidate the module
// graph.
var manifestNames = map[string]bool{
	"go.mod":      true,
	"go.sum":      true,
	"go.work":     true,
	"go.work.sum": true,
}

// debounceWindow coalesces the burst of events an editor save or a `go mod
// tidy` produces into a single refresh.
const debounceWindow = 250 * time.Millisecond

// ManifestDirs returns the set of directories that should be watched for
// manifest changes: the workspace root plus every given module directory
// that exists.
func ManifestDirs(root string, memberDirs []string) []string {
	seen := map[string]bool{}
	var dirs []string
	add := func(dir string) {
		// Cleaning first would turn "" into ".", silently watching the
		// working directory for members without a source path.
		if dir == "" {
			return
		}
		dir = filepath.Clean(dir)
		if seen[dir] {
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	add(root)
	for _, dir := range memberDirs {
		add(dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Watch blocks, invoking onChange every time a manifest file in one of the
// watched directories is written, created, renamed or removed. Events are
// debounced. Watch returns when the context is cancelled (returning nil) or
// when the underlying watcher fails.
//
// Directories rather than files are watched because editors and the
// toolchain replace manifests via rename, which drops file-level watches.
func Watch(ctx context.Context, dirs []string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logging.Debug("Watch", "watching %s", dir)
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !manifestNames[filepath.Base(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logging.Debug("Watch", "manifest change: %s (%s)", ev.Name, ev.Op)
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher error: %w", err)
		}
	}
}
