package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/ledgertools/ledgerfmt/beautifier"
)

// watch reformats the file in place on every change until interrupted.
// The watch is placed on the directory rather than the file itself so that
// editors doing atomic saves (write to temp, rename over) stay tracked.
func (cmd *FormatCmd) watch(runCtx context.Context, ctx *kong.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(cmd.File.Filename)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	signalCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	// Format once up front so the watch starts from a clean state.
	cmd.formatInPlace(ctx, target)
	printInfof(ctx.Stdout, "watching %s", pathStyle.Render(cmd.File.Filename))

	// Editors often write files in multiple steps; debounce the events.
	const debounceDelay = 100 * time.Millisecond
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-signalCtx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				cmd.formatInPlace(ctx, target)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(ctx.Stderr, fmt.Sprintf("watch error: %v", err))
		}
	}
}

// formatInPlace rewrites the file when its formatting changed, reporting
// the outcome without stopping the watch.
func (cmd *FormatCmd) formatInPlace(ctx *kong.Context, target string) {
	source, err := os.ReadFile(target)
	if err != nil {
		printError(ctx.Stderr, fmt.Sprintf("failed to read %s: %v", cmd.File.Filename, err))
		return
	}

	formatted, err := beautifier.Beautify(source)
	if err != nil {
		renderer := NewErrorRenderer(source)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		return
	}

	if formatted == string(source) {
		return
	}

	if err := writeFilePreservingMode(target, []byte(formatted)); err != nil {
		printError(ctx.Stderr, fmt.Sprintf("failed to write %s: %v", cmd.File.Filename, err))
		return
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("formatted %s", pathStyle.Render(cmd.File.Filename)))
}
