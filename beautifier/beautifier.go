// Package beautifier re-emits a parsed ledger journal with normalized
// indentation, spacing and amount alignment. The traversal is a single
// depth-first walk over the syntax tree driving a mutable layout state;
// output is produced either into an accumulated string or streamed to a
// writer, with byte-identical results.
package beautifier

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ledgertools/ledgerfmt/syntax"
)

const (
	// AlignmentColumn is the column the leading quantity digit of a
	// posting amount is aligned against.
	AlignmentColumn = 60

	// IndentWidth is the number of spaces per indentation level.
	IndentWidth = 2
)

// Beautify parses source and returns the formatted document as a string,
// for in-place rewrites.
func Beautify(source []byte) (string, error) {
	var buf strings.Builder
	buf.Grow(len(source) + len(source)/2)
	if err := BeautifyTo(&buf, source); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BeautifyTo parses source and streams the formatted document to w.
// When the tree contains grammar errors, nothing is written and a
// *SyntaxError locating the first error is returned.
func BeautifyTo(w io.Writer, source []byte) error {
	tree, err := syntax.Parse(source)
	if err != nil {
		return fmt.Errorf("could not parse file: %w", err)
	}

	if tree.HasError() {
		errNode := findFirstErrorNode(tree.Root())
		if errNode == nil {
			return &InconsistentTreeError{}
		}
		return &SyntaxError{Line: errNode.Pos.Row + 1}
	}

	s := newState(w, source)
	if err := s.formatDocument(tree.Root()); err != nil {
		return err
	}
	if s.col > 0 {
		s.println("")
	}
	return s.err
}

// findFirstErrorNode performs a depth-first, children-in-order search for
// the first error node.
func findFirstErrorNode(node *syntax.Node) *syntax.Node {
	if node.IsError() {
		return node
	}
	for _, child := range node.Children {
		if errNode := findFirstErrorNode(child); errNode != nil {
			return errNode
		}
	}
	return nil
}

// state is the layout cursor for one formatting run. col counts the
// display width emitted since the last line break; it is what alignment
// decisions read.
type state struct {
	w      io.Writer
	source []byte

	col              int
	row              int
	level            int
	extraIndentation int
	numSpaces        int

	err error // first write error, sticky
}

func newState(w io.Writer, source []byte) *state {
	return &state{w: w, source: source, numSpaces: IndentWidth}
}

func (s *state) print(str string) {
	if s.err != nil || str == "" {
		return
	}
	if _, err := io.WriteString(s.w, str); err != nil {
		s.err = err
		return
	}
	s.col += runewidth.StringWidth(str)
}

func (s *state) println(str string) {
	s.print(str)
	if s.err != nil {
		return
	}
	if _, err := io.WriteString(s.w, "\n"); err != nil {
		s.err = err
		return
	}
	s.col = 0
	s.row++
}

func (s *state) printNode(node *syntax.Node) {
	s.print(node.Text(s.source))
}

func (s *state) indent() {
	for i := 0; i < s.level; i++ {
		s.print(strings.Repeat(" ", s.numSpaces))
	}
	for i := 0; i < s.extraIndentation; i++ {
		s.print(" ")
	}
}

// formatDocument walks the root's children. Runs of blank-line markers
// collapse to a single blank line; leading blanks are dropped entirely.
func (s *state) formatDocument(root *syntax.Node) error {
	addedNewline := true
	for _, child := range root.Children {
		if child.Kind == syntax.KindNewline {
			if !addedNewline {
				s.println("")
			}
			addedNewline = true
			continue
		}

		addedNewline = false
		inner := child.Child(0)
		if inner == nil {
			return errAt(child, "journal item")
		}
		if err := s.formatJournalItem(inner); err != nil {
			return err
		}
	}
	return nil
}

// formatJournalItem dispatches one top-level construct. Verbatim kinds are
// copied unchanged; unhandled kinds are skipped without output.
func (s *state) formatJournalItem(node *syntax.Node) error {
	switch node.Kind {
	case syntax.KindComment, syntax.KindBlockComment, syntax.KindBlockTest:
		s.printNode(node)
		s.println("")
		return nil
	case syntax.KindDirective:
		return s.formatDirective(node)
	case syntax.KindXact:
		return s.formatXact(node)
	default:
		return nil
	}
}
