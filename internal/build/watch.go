package build

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor save bursts (swap files, atomic renames)
// into a single rebuild.
const watchDebounce = 300 * time.Millisecond

// watchedDirs are the input roots monitored in watch mode, relative to the
// project root.
var watchedDirs = []string{"content", "data", "static", "templates"}

// Watcher rebuilds the site whenever a project input changes. Rebuilds run
// one at a time; a failed rebuild is logged and the previous output stays
// in place.
type Watcher struct {
	builder *Builder
	watcher *fsnotify.Watcher
	changed chan struct{}

	// OnBuild, when set, is called after every completed rebuild. The
	// preview server uses it for change notification.
	OnBuild func(*Report)
}

// NewWatcher creates a Watcher over the builder's project root.
func NewWatcher(builder *Builder) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		builder: builder,
		watcher: fsw,
		changed: make(chan struct{}, 1),
	}, nil
}

// Run builds once, then blocks rebuilding on changes until ctx is
// cancelled. The initial build's error is returned; rebuild errors are
// logged.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addWatches(); err != nil {
		return err
	}

	if _, err := w.builder.Run(ctx); err != nil {
		return err
	}

	go w.eventLoop(ctx)
	w.rebuildLoop(ctx)
	return ctx.Err()
}

// addWatches registers every tracked directory tree plus the directory
// holding the config file. fsnotify is not recursive, so each subdirectory
// is added individually.
func (w *Watcher) addWatches() error {
	if err := w.watcher.Add(filepath.Dir(w.builder.opts.configPath())); err != nil {
		return fmt.Errorf("watching project root: %w", err)
	}
	for _, dir := range watchedDirs {
		root := filepath.Join(w.builder.opts.Root, dir)
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			return w.watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}
	return nil
}

// eventLoop translates filesystem events into change signals and keeps the
// watch set current as directories appear.
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						slog.Warn("watching new directory failed", "path", event.Name, "error", err)
					}
				}
			}
			slog.Debug("input changed", "path", event.Name, "op", event.Op.String())
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "error", err)
		}
	}
}

// relevant filters out events for paths outside the tracked inputs. Events
// arrive for the whole project root directory because the config file's
// directory is watched.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Name == w.builder.opts.configPath() {
		return true
	}
	rel, err := filepath.Rel(w.builder.opts.Root, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, dir := range watchedDirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

// rebuildLoop debounces change signals and runs rebuilds sequentially.
// Changes arriving during a rebuild coalesce into one follow-up build.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.changed:
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			report, err := w.builder.Run(ctx)
			if err != nil {
				slog.Error("rebuild failed, previous output kept", "error", err)
				continue
			}
			slog.Info("rebuilt",
				slog.String("scope", report.Scope.String()),
				slog.Duration("duration", report.Duration),
				slog.Int("pages_written", report.PagesWritten))
			if w.OnBuild != nil {
				w.OnBuild(report)
			}
		}
	}
}
