package syntax

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when the source is not valid UTF-8 and no
// tree can be produced at all.
var ErrInvalidEncoding = errors.New("source is not valid UTF-8")

// Parse builds a syntax tree for one journal document. The returned tree
// owns no copy of source; callers must keep the buffer alive while nodes
// are in use. A non-nil error means no tree could be produced; grammar
// errors inside an otherwise well-formed document are reported through
// Tree.HasError and ERROR nodes instead.
func Parse(source []byte) (*Tree, error) {
	if !utf8.Valid(source) {
		return nil, ErrInvalidEncoding
	}

	p := &parser{src: source}
	p.splitLines()
	root := p.parseSourceFile()

	return &Tree{source: source, root: root, hasError: p.hasError}, nil
}

// lineSpan addresses one physical line. end excludes the line terminator.
type lineSpan struct {
	start int
	end   int
	row   int
}

type parser struct {
	src      []byte
	lines    []lineSpan
	idx      int
	hasError bool
}

func (p *parser) splitLines() {
	start := 0
	row := 0
	for i := 0; i < len(p.src); i++ {
		if p.src[i] == '\n' {
			end := i
			if end > start && p.src[end-1] == '\r' {
				end--
			}
			p.lines = append(p.lines, lineSpan{start: start, end: end, row: row})
			start = i + 1
			row++
		}
	}
	if start < len(p.src) {
		p.lines = append(p.lines, lineSpan{start: start, end: len(p.src), row: row})
	}
}

func (p *parser) text(ln lineSpan) string {
	return string(p.src[ln.start:ln.end])
}

// indentWidth returns the number of leading blank bytes on the line.
func (p *parser) indentWidth(ln lineSpan) int {
	i := ln.start
	for i < ln.end && (p.src[i] == ' ' || p.src[i] == '\t') {
		i++
	}
	return i - ln.start
}

func (p *parser) isBlank(ln lineSpan) bool {
	return p.indentWidth(ln) == ln.end-ln.start
}

func (p *parser) parseSourceFile() *Node {
	root := &Node{Kind: KindSourceFile, Named: true, Start: 0, End: len(p.src)}

	for p.idx < len(p.lines) {
		ln := p.lines[p.idx]

		if p.isBlank(ln) {
			root.Children = append(root.Children, &Node{
				Kind:  KindNewline,
				Start: ln.start,
				End:   ln.end,
				Pos:   Position{Row: ln.row},
			})
			p.idx++
			continue
		}

		item := p.parseJournalItem(ln)
		root.Children = append(root.Children, item)
	}

	return root
}

// parseJournalItem consumes one top-level construct, which may span
// multiple lines, and wraps it in a journal_item node.
func (p *parser) parseJournalItem(ln lineSpan) *Node {
	child := p.parseTopLevel(ln)
	return &Node{
		Kind:     KindJournalItem,
		Named:    true,
		Start:    child.Start,
		End:      child.End,
		Pos:      child.Pos,
		Children: []*Node{child},
	}
}

func (p *parser) parseTopLevel(ln lineSpan) *Node {
	trimmed := strings.TrimSpace(p.text(ln))
	first := trimmed[0]

	switch {
	case first == ';' || first == '#' || first == '%' || first == '|' || first == '*':
		return p.commentLine(ln)

	case p.indentWidth(ln) > 0:
		// An indented line outside any transaction or directive has no
		// construct to belong to.
		return p.errorLine(ln)

	case trimmed == "comment":
		return p.parseBlock(KindBlockComment, ln, "end comment")

	case trimmed == "test" || strings.HasPrefix(trimmed, "test "):
		return p.parseBlock(KindBlockTest, ln, "end test")

	case first >= '0' && first <= '9':
		return p.parsePlainXactWrapped(ln)

	case first == '~':
		return p.parseConditionalXactWrapped(ln, KindPeriodicXact, KindInterval)

	case first == '=':
		return p.parseConditionalXactWrapped(ln, KindAutomatedXact, KindQuery)

	default:
		return p.parseDirective(ln)
	}
}

// commentLine consumes a line comment. The node starts at the comment
// marker so any leading indentation is dropped by reformatting.
func (p *parser) commentLine(ln lineSpan) *Node {
	contentStart := ln.start + p.indentWidth(ln)
	p.idx++
	return &Node{
		Kind:  KindComment,
		Named: true,
		Start: contentStart,
		End:   ln.end,
		Pos:   Position{Row: ln.row, Column: contentStart - ln.start},
	}
}

// lineNode wraps one whole line in a node of the given kind and consumes it.
func (p *parser) lineNode(kind string, ln lineSpan) *Node {
	p.idx++
	return &Node{
		Kind:  kind,
		Named: true,
		Start: ln.start,
		End:   ln.end,
		Pos:   Position{Row: ln.row},
	}
}

func (p *parser) errorLine(ln lineSpan) *Node {
	p.hasError = true
	col := p.indentWidth(ln)
	p.idx++
	return &Node{
		Kind:  KindError,
		Named: true,
		Start: ln.start,
		End:   ln.end,
		Pos:   Position{Row: ln.row, Column: col},
	}
}

// parseBlock consumes a verbatim block from the opening line through the
// line matching terminator. An unterminated block is a syntax error.
func (p *parser) parseBlock(kind string, ln lineSpan, terminator string) *Node {
	start := ln
	for p.idx < len(p.lines) {
		cur := p.lines[p.idx]
		p.idx++
		if cur.row > start.row && strings.TrimSpace(p.text(cur)) == terminator {
			return &Node{
				Kind:  kind,
				Named: true,
				Start: start.start,
				End:   cur.end,
				Pos:   Position{Row: start.row},
			}
		}
	}

	p.hasError = true
	return &Node{
		Kind:  KindError,
		Named: true,
		Start: start.start,
		End:   len(p.src),
		Pos:   Position{Row: start.row},
	}
}

// Directives that take free-form word arguments on a single line.
var wordDirectives = map[string]bool{
	"include": true,
	"end":     true,
	"alias":   true,
	"def":     true,
	"define":  true,
	"year":    true,
	"bucket":  true,
	"apply":   true,
	"payee":   true,
}

// Single-letter directives from the historical ledger CLI syntax.
const charDirectives = "AYNDCIiObhP"

func (p *parser) parseDirective(ln lineSpan) *Node {
	word, _, _ := firstWord(p.src, ln.start, ln.end)

	var inner *Node
	switch {
	case word == "account":
		inner = p.parseContainerDirective(ln, KindAccountDirective, KindAccount, KindAccountSubdirective)
	case word == "commodity":
		inner = p.parseContainerDirective(ln, KindCommodityDirective, KindCommodity, KindCommoditySubdirective)
	case word == "tag":
		inner = p.parseContainerDirective(ln, KindTagDirective, KindTag, "")
	case word == "option":
		inner = p.lineNode(KindOption, ln)
	case wordDirectives[word]:
		inner = p.parseTokenDirective(KindWordDirective, ln)
	case len(word) == 1 && strings.ContainsRune(charDirectives, rune(word[0])):
		inner = p.parseTokenDirective(KindCharDirective, ln)
	case len(word) > 1 && strings.ContainsRune(charDirectives, rune(word[0])) && word[1] >= '0' && word[1] <= '9':
		// Forms like "Y2024" glue the argument to the directive letter.
		inner = p.parseTokenDirective(KindCharDirective, ln)
	default:
		return p.errorLine(ln)
	}

	return &Node{
		Kind:     KindDirective,
		Named:    true,
		Start:    inner.Start,
		End:      inner.End,
		Pos:      inner.Pos,
		Children: []*Node{inner},
	}
}

// parseContainerDirective handles account, commodity and tag directives:
// a keyword plus name on the first line, then indented subdirectives.
// subdirectiveKind is the wrapper kind, or "" for directives whose
// subdirectives appear unwrapped (tag).
func (p *parser) parseContainerDirective(ln lineSpan, kind, nameKind, subdirectiveKind string) *Node {
	node := &Node{
		Kind:  kind,
		Named: true,
		Start: ln.start,
		End:   ln.end,
		Pos:   Position{Row: ln.row},
	}

	_, _, rest := firstWord(p.src, ln.start, ln.end)
	if name := p.tokenNode(nameKind, ln, rest, ln.end); name != nil {
		node.Children = append(node.Children, name)
	}
	p.idx++

	for p.idx < len(p.lines) {
		cur := p.lines[p.idx]
		if p.isBlank(cur) || p.indentWidth(cur) == 0 {
			break
		}
		sub := p.parseSubdirective(cur, subdirectiveKind)
		node.Children = append(node.Children, sub)
		node.End = cur.end
		p.idx++
	}

	return node
}

// parseSubdirective parses one indented line under a container directive.
func (p *parser) parseSubdirective(ln lineSpan, wrapperKind string) *Node {
	contentStart := ln.start + p.indentWidth(ln)

	if p.src[contentStart] == ';' {
		return &Node{
			Kind:  KindComment,
			Named: true,
			Start: contentStart,
			End:   ln.end,
			Pos:   Position{Row: ln.row, Column: contentStart - ln.start},
		}
	}

	word, wordStart, rest := firstWord(p.src, contentStart, ln.end)

	inner := &Node{
		Kind:  word + "_subdirective",
		Named: true,
		Start: wordStart,
		End:   ln.end,
		Pos:   Position{Row: ln.row, Column: wordStart - ln.start},
	}

	switch word {
	case "alias", "note", "assert", "check", "payee":
		if value := p.tokenNode(KindValue, ln, rest, ln.end); value != nil {
			inner.Children = append(inner.Children, value)
		}
	case "format":
		if amount := p.parseAmountSpan(ln, rest, ln.end); amount != nil {
			inner.Children = append(inner.Children, amount)
		}
	case "default", "nomarket":
		// Bare keywords, no argument.
	default:
		// Unrecognized subdirective kinds are preserved in the tree and
		// skipped by consumers.
	}

	if wrapperKind == "" {
		return inner
	}
	return &Node{
		Kind:     wrapperKind,
		Named:    true,
		Start:    inner.Start,
		End:      inner.End,
		Pos:      inner.Pos,
		Children: []*Node{inner},
	}
}

// parseTokenDirective splits a directive line into word and whitespace
// tokens, preserving both so consumers can rebuild the line.
func (p *parser) parseTokenDirective(kind string, ln lineSpan) *Node {
	node := &Node{
		Kind:  kind,
		Named: true,
		Start: ln.start,
		End:   ln.end,
		Pos:   Position{Row: ln.row},
	}

	i := ln.start
	for i < ln.end {
		start := i
		if p.src[i] == ' ' || p.src[i] == '\t' {
			for i < ln.end && (p.src[i] == ' ' || p.src[i] == '\t') {
				i++
			}
			node.Children = append(node.Children, &Node{
				Kind:  KindWhitespace,
				Start: start,
				End:   i,
				Pos:   Position{Row: ln.row, Column: start - ln.start},
			})
			continue
		}
		for i < ln.end && p.src[i] != ' ' && p.src[i] != '\t' {
			i++
		}
		node.Children = append(node.Children, &Node{
			Kind:  KindWord,
			Start: start,
			End:   i,
			Pos:   Position{Row: ln.row, Column: start - ln.start},
		})
	}

	p.idx++
	return node
}

// tokenNode builds a named node over [start, end) trimmed of surrounding
// blanks. Returns nil when the trimmed span is empty.
func (p *parser) tokenNode(kind string, ln lineSpan, start, end int) *Node {
	start, end = trimSpan(p.src, start, end)
	if start >= end {
		return nil
	}
	return &Node{
		Kind:  kind,
		Named: true,
		Start: start,
		End:   end,
		Pos:   Position{Row: ln.row, Column: start - ln.start},
	}
}

// firstWord scans the first run of non-blank bytes in [start, end).
// It returns the word, its starting offset, and the offset just past it.
func firstWord(src []byte, start, end int) (string, int, int) {
	i := start
	for i < end && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	wordStart := i
	for i < end && src[i] != ' ' && src[i] != '\t' {
		i++
	}
	return string(src[wordStart:i]), wordStart, i
}

// trimSpan narrows [start, end) to exclude surrounding blanks.
func trimSpan(src []byte, start, end int) (int, int) {
	for start < end && (src[start] == ' ' || src[start] == '\t') {
		start++
	}
	for end > start && (src[end-1] == ' ' || src[end-1] == '\t') {
		end--
	}
	return start, end
}
