package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/ledgertools/ledgerfmt/syntax"
)

// DumpCmd prints the syntax tree of a journal, mainly for debugging the
// grammar and the formatter.
type DumpCmd struct {
	File FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *DumpCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	source, err := cmd.File.SourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	tree, err := syntax.Parse(source)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	printer := repr.New(ctx.Stdout, repr.Indent("  "), repr.OmitEmpty(true))
	printer.Println(tree.Root())

	if tree.HasError() {
		printError(ctx.Stderr, "journal contains syntax errors")
		return NewCommandError(1)
	}

	return nil
}
