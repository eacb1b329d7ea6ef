package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ledgertools/ledgerfmt/syntax"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders errors with terminal styling and, for errors that
// carry a position, a few lines of source context with a caret under the
// offending column.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer over the journal being processed.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats one error. Errors without a position render as their
// plain message.
func (r *ErrorRenderer) Render(err error) string {
	if e, ok := err.(interface {
		GetPosition() syntax.Position
		Error() string
	}); ok && r.source != nil {
		return r.renderWithSourceContext(e.GetPosition(), e.Error())
	}
	return err.Error()
}

func (r *ErrorRenderer) renderWithSourceContext(pos syntax.Position, message string) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	lines := strings.Split(string(r.source), "\n")

	// Positions are 0-based rows; show up to two lines before and one after.
	startLine := pos.Row - 2
	if startLine < 0 {
		startLine = 0
	}
	endLine := pos.Row + 1
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(lines[i]))
		buf.WriteByte('\n')

		if i == pos.Row {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column))
			buf.WriteString(errCaretStyle.Render("^"))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}
