// Package syntax parses ledger journal text into a concrete syntax tree.
//
// The tree mirrors the journal grammar: every construct becomes a Node with
// a string kind, a byte range into the original source, and an ordered list
// of children. Nodes never copy source text; Text materializes a slice of
// the buffer on demand. Lines that cannot be parsed become ERROR nodes and
// mark the whole tree as erroneous.
package syntax

import "fmt"

// Node kinds produced by the parser. Formatters dispatch on these.
const (
	KindSourceFile   = "source_file"
	KindNewline      = "\n"
	KindJournalItem  = "journal_item"
	KindComment      = "comment"
	KindBlockComment = "block_comment"
	KindBlockTest    = "block_test"
	KindError        = "ERROR"

	KindDirective          = "directive"
	KindOption             = "option"
	KindAccountDirective   = "account_directive"
	KindCommodityDirective = "commodity_directive"
	KindTagDirective       = "tag_directive"
	KindWordDirective      = "word_directive"
	KindCharDirective      = "char_directive"

	KindAccountSubdirective   = "account_subdirective"
	KindCommoditySubdirective = "commodity_subdirective"
	KindAliasSubdirective     = "alias_subdirective"
	KindNoteSubdirective      = "note_subdirective"
	KindAssertSubdirective    = "assert_subdirective"
	KindCheckSubdirective     = "check_subdirective"
	KindPayeeSubdirective     = "payee_subdirective"
	KindDefaultSubdirective   = "default_subdirective"
	KindFormatSubdirective    = "format_subdirective"
	KindNomarketSubdirective  = "nomarket_subdirective"
	KindValue                 = "value"

	KindXact          = "xact"
	KindPlainXact     = "plain_xact"
	KindPeriodicXact  = "periodic_xact"
	KindAutomatedXact = "automated_xact"
	KindDate          = "date"
	KindEffectiveDate = "effective_date"
	KindStatus        = "status"
	KindCode          = "code"
	KindPayee         = "payee"
	KindInterval      = "interval"
	KindQuery         = "query"
	KindNote          = "note"

	KindPosting          = "posting"
	KindAccount          = "account"
	KindAmount           = "amount"
	KindQuantity         = "quantity"
	KindNegativeQuantity = "negative_quantity"
	KindCommodity        = "commodity"
	KindPrice            = "price"
	KindBalanceAssertion = "balance_assertion"
	KindTag              = "tag"

	KindWord       = "word"
	KindWhitespace = "whitespace"
)

// Position is a location in the source, using the grammar's conventions:
// rows and columns are 0-based.
type Position struct {
	Row    int
	Column int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Node is a view into the syntax tree. Its byte range points into the
// source buffer owned by the Tree; a Node must not outlive its Tree.
// Children holds all children in source order.
type Node struct {
	Kind  string
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
	Pos   Position
	Named bool

	Children []*Node
}

// NamedChildren returns the children that carry grammar meaning, excluding
// anonymous tokens such as newlines, whitespace and punctuation.
func (n *Node) NamedChildren() []*Node {
	named := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			named = append(named, c)
		}
	}
	return named
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// FirstChild returns the first child of the given kind, searching all
// children in source order. Returns nil when absent.
func (n *Node) FirstChild(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Text materializes the node's source text. The source must be the buffer
// the tree was parsed from.
func (n *Node) Text(source []byte) string {
	if n.Start < 0 || n.End > len(source) || n.Start > n.End {
		return ""
	}
	return string(source[n.Start:n.End])
}

// IsError reports whether this node marks a syntax error.
func (n *Node) IsError() bool {
	return n.Kind == KindError
}

// Tree is an immutable parse result. It owns the source buffer for text
// extraction and is read-only after Parse returns.
type Tree struct {
	source   []byte
	root     *Node
	hasError bool
}

// Root returns the source_file node.
func (t *Tree) Root() *Node { return t.root }

// Source returns the buffer the tree was parsed from.
func (t *Tree) Source() []byte { return t.source }

// HasError reports whether any ERROR node was produced during parsing.
func (t *Tree) HasError() bool { return t.hasError }
