package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
)

// Editors often write files in several steps.
const debounceDelay = 100 * time.Millisecond

// watch analyzes the ledger, then again after every change to a loaded file, until
// interrupted. The watch list follows the files of the latest pass so that new includes are
// picked up.
func (cmd *AnalyzeCmd) watch(kctx *kong.Context, globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched := make(map[string]bool)
	pass := func() {
		_, files := cmd.analyzeOnce(kctx.Stdout, kctx.Stderr, globals)
		if len(files) == 0 {
			files = []string{cmd.File}
		}
		updateWatchList(kctx, watcher, watched, files)
		printInfof(kctx.Stderr, "Watching %d file(s) for changes", len(watched))
	}
	pass()

	var debounce *time.Timer
	changed := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Remove and Rename are common in atomic saves
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			_, _ = fmt.Fprintln(kctx.Stderr)
			pass()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(kctx.Stderr, fmt.Sprintf("file watcher error: %v", err))
		}
	}
}

// updateWatchList makes the watcher follow exactly files. Current files are added again to
// catch files re-created by an atomic save.
func updateWatchList(kctx *kong.Context, watcher *fsnotify.Watcher, watched map[string]bool, files []string) {
	current := make(map[string]bool, len(files))
	for _, file := range files {
		current[file] = true
	}

	for file := range watched {
		if !current[file] {
			_ = watcher.Remove(file)
			delete(watched, file)
		}
	}

	for file := range current {
		if err := watcher.Add(file); err != nil {
			printError(kctx.Stderr, fmt.Sprintf("failed to watch %s: %v", file, err))
			continue
		}
		watched[file] = true
	}
}
