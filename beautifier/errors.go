package beautifier

import (
	"fmt"

	"github.com/ledgertools/ledgerfmt/syntax"
)

// SyntaxError reports the first grammar error found in the parsed tree.
// Line is 1-based.
type SyntaxError struct {
	Line int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Parsed file contains errors (at line %d).", e.Line)
}

// GetPosition returns the error location for source-context rendering.
func (e *SyntaxError) GetPosition() syntax.Position {
	return syntax.Position{Row: e.Line - 1}
}

// InconsistentTreeError reports that the tree's error flag was set but no
// error node could be located. It indicates a provider defect, not a
// problem with the input.
type InconsistentTreeError struct{}

func (e *InconsistentTreeError) Error() string {
	return "syntax tree reports an error, but no error node was found"
}

// StructuralError reports a required child missing from a node the
// formatter was rendering. Positions use the tree's 0-based convention.
type StructuralError struct {
	Pos     syntax.Position
	Missing string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("missing %s around line %d col %d", e.Missing, e.Pos.Row, e.Pos.Column)
}

// GetPosition returns the error location for source-context rendering.
func (e *StructuralError) GetPosition() syntax.Position {
	return e.Pos
}

// errAt builds a StructuralError for a child expected under node.
func errAt(node *syntax.Node, missing string) error {
	return &StructuralError{Pos: node.Pos, Missing: missing}
}
