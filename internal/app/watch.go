package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of file events, such as an editor's
// write-then-rename, into one regeneration.
const watchDebounce = 200 * time.Millisecond

// watch generates once and then again after every change to a declaration
// file, until ctx is cancelled. Generation errors are logged, not returned,
// so a typo does not end the session.
func (a *App) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(a.config.Paths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	a.logger.Info("Watching declarations.", "dirs", len(dirs))
	roots := treeRoots(a.config.Paths)

	a.regenerate(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
		} else {
			timer.Reset(watchDebounce)
		}
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && within(roots, event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						a.logger.Error("Failed to watch new directory.", "dir", event.Name, "error", err)
						continue
					}
					a.logger.Debug("Watching new directory.", "dir", event.Name)
					// Files may have landed before the watch was added.
					schedule()
					continue
				}
			}
			if !a.loader.Handles(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			a.logger.Debug("Declaration change detected.", "file", event.Name, "op", event.Op.String())
			schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("File watcher error.", "error", err)

		case <-fire:
			fire = nil
			a.regenerate(ctx)
		}
	}
}

func (a *App) regenerate(ctx context.Context) {
	written, err := a.generate(ctx)
	if err != nil {
		a.logger.Error("Generation failed.", "error", err)
		return
	}
	a.logger.Debug("Generation finished.", "written", len(written))
}

// watchDirs lists the directories to watch: every directory under a
// directory path, and the parent of a file path. fsnotify is not recursive.
func watchDirs(paths []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

func addTree(watcher *fsnotify.Watcher, dir string) error {
	dirs, err := watchDirs([]string{dir})
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// treeRoots returns the directories among paths. Directories created below
// them are in scope; a file path only brings its own parent.
func treeRoots(paths []string) []string {
	var roots []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			roots = append(roots, filepath.Clean(p))
		}
	}
	return roots
}

func within(roots []string, path string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
