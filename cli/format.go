package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ledgertools/ledgerfmt/beautifier"
	"github.com/ledgertools/ledgerfmt/output"
	"github.com/ledgertools/ledgerfmt/telemetry"
)

type FormatCmd struct {
	File  FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Write bool        `help:"Rewrite the file in place instead of printing to stdout." short:"w"`
	Watch bool        `help:"Watch the file and reformat it on every change (implies --write)."`
}

func (cmd *FormatCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	if cmd.File.IsStdin() && (cmd.Write || cmd.Watch) {
		return fmt.Errorf("--write and --watch require a file, not stdin")
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		}()
	}

	if cmd.Watch {
		return cmd.watch(runCtx, ctx)
	}

	timer := telemetry.FromContext(runCtx).Start(fmt.Sprintf("format %s", filepath.Base(cmd.File.Filename)))
	defer timer.End()

	source, err := cmd.File.SourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if cmd.Write {
		return cmd.rewrite(ctx, timer, source)
	}

	// Streaming straight to stdout; syntax errors are detected before any
	// byte is written.
	beautifyTimer := timer.Child("beautify")
	err = beautifier.BeautifyTo(ctx.Stdout, source)
	beautifyTimer.End()
	if err != nil {
		return renderBeautifyError(ctx, source, err)
	}

	return nil
}

// rewrite formats into memory and writes the file back only when the
// formatted text differs.
func (cmd *FormatCmd) rewrite(ctx *kong.Context, timer telemetry.Timer, source []byte) error {
	beautifyTimer := timer.Child("beautify")
	formatted, err := beautifier.Beautify(source)
	beautifyTimer.End()
	if err != nil {
		return renderBeautifyError(ctx, source, err)
	}

	if formatted == string(source) {
		printInfof(ctx.Stdout, "%s already formatted", pathStyle.Render(cmd.File.Filename))
		return nil
	}

	if err := writeFilePreservingMode(cmd.File.Filename, []byte(formatted)); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("formatted %s", pathStyle.Render(cmd.File.Filename)))
	return nil
}

// renderBeautifyError prints the error with source context and converts it
// into an exit-code-only failure.
func renderBeautifyError(ctx *kong.Context, source []byte, err error) error {
	renderer := NewErrorRenderer(source)
	_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
	printError(ctx.Stderr, "format failed")
	return NewCommandError(1)
}

func writeFilePreservingMode(filename string, contents []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(filename); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(filename, contents, mode)
}
