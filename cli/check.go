package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/ledgertools/ledgerfmt/beautifier"
	"github.com/ledgertools/ledgerfmt/output"
	"github.com/ledgertools/ledgerfmt/telemetry"
)

type CheckCmd struct {
	File FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
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

	timer := telemetry.FromContext(runCtx).Start(fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
	defer timer.End()

	source, err := cmd.File.SourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	beautifyTimer := timer.Child("beautify")
	formatted, err := beautifier.Beautify(source)
	beautifyTimer.End()
	if err != nil {
		return renderBeautifyError(ctx, source, err)
	}

	if formatted == string(source) {
		printSuccess(ctx.Stdout, fmt.Sprintf("%s is formatted", pathStyle.Render(cmd.File.Filename)))
		return nil
	}

	diffTimer := timer.Child("diff")
	edits := myers.ComputeEdits(span.URIFromPath(cmd.File.Filename), string(source), formatted)
	unified := fmt.Sprint(gotextdiff.ToUnified(cmd.File.Filename, cmd.File.Filename+" (formatted)", string(source), edits))
	diffTimer.End()

	_, _ = fmt.Fprint(ctx.Stdout, unified)
	printError(ctx.Stderr, fmt.Sprintf("%s is not formatted", cmd.File.Filename))

	if cmd.File.IsStdin() {
		return NewCommandError(1)
	}

	apply, err := promptYesNo(fmt.Sprintf("Apply formatting to %s?", cmd.File.Filename))
	if err != nil {
		return err
	}
	if !apply {
		return NewCommandError(1)
	}

	if err := writeFilePreservingMode(cmd.File.Filename, []byte(formatted)); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("formatted %s", pathStyle.Render(cmd.File.Filename)))

	return nil
}
