package beautifier

import (
	"strings"

	"github.com/ledgertools/ledgerfmt/syntax"
)

func (s *state) formatXact(node *syntax.Node) error {
	child := node.Child(0)
	if child == nil {
		return errAt(node, "transaction")
	}

	switch child.Kind {
	case syntax.KindPlainXact:
		return s.formatPlainXact(child)
	case syntax.KindPeriodicXact:
		return s.formatConditionalXact(child, "~ ", syntax.KindInterval)
	case syntax.KindAutomatedXact:
		return s.formatConditionalXact(child, "= ", syntax.KindQuery)
	default:
		return nil
	}
}

// formatPlainXact assembles the header in the fixed field order date,
// effective date, status, code, payee, then renders notes and postings
// indented one level.
func (s *state) formatPlainXact(node *syntax.Node) error {
	for _, child := range node.NamedChildren() {
		switch child.Kind {
		case syntax.KindDate:
			s.printNode(child)
		case syntax.KindEffectiveDate:
			s.print("=")
			s.printNode(child)
		case syntax.KindStatus, syntax.KindCode, syntax.KindPayee:
			s.print(" ")
			s.printNode(child)
		}
	}
	s.println("")

	return s.formatXactBody(node, nil)
}

// formatConditionalXact renders a periodic or automated transaction: the
// marker, the trimmed header expression, and a note when one sits on the
// header line.
func (s *state) formatConditionalXact(node *syntax.Node, marker, headerKind string) error {
	s.print(marker)
	header := node.FirstChild(headerKind)
	if header == nil {
		return errAt(node, headerKind)
	}
	s.print(strings.TrimSpace(header.Text(s.source)))

	headerNote := headerLineNote(node)
	if headerNote != nil {
		s.print(" ")
		s.printNode(headerNote)
	}
	s.println("")

	return s.formatXactBody(node, headerNote)
}

// headerLineNote returns the note sharing the header's source row, if any.
func headerLineNote(node *syntax.Node) *syntax.Node {
	for _, child := range node.NamedChildren() {
		if child.Kind == syntax.KindNote && child.Pos.Row == node.Pos.Row {
			return child
		}
	}
	return nil
}

// formatXactBody renders the indented note and posting lines, skipping the
// note already consumed by the header.
func (s *state) formatXactBody(node *syntax.Node, consumed *syntax.Node) error {
	s.level++
	defer func() { s.level-- }()

	for _, child := range node.NamedChildren() {
		if child == consumed {
			continue
		}
		switch child.Kind {
		case syntax.KindNote:
			s.indent()
			s.println(child.Text(s.source))
		case syntax.KindPosting:
			s.indent()
			if err := s.formatPosting(child); err != nil {
				return err
			}
		}
	}

	return nil
}

// formatPosting renders one posting. The amount is padded so its leading
// quantity digit lands on the alignment column where the account text
// allows; without an amount, the padding target applies to whichever of
// price, assertion or note comes first.
func (s *state) formatPosting(node *syntax.Node) error {
	if status := node.FirstChild(syntax.KindStatus); status != nil {
		s.printNode(status)
		s.print(" ")
	}
	if account := node.FirstChild(syntax.KindAccount); account != nil {
		s.printNode(account)
	}

	spacing := strings.Repeat(" ", max(0, AlignmentColumn-s.col))

	if amount := node.FirstChild(syntax.KindAmount); amount != nil {
		quantity := amount.FirstChild(syntax.KindQuantity)
		if quantity == nil {
			quantity = amount.FirstChild(syntax.KindNegativeQuantity)
		}
		if quantity == nil {
			return errAt(amount, "quantity")
		}
		width := len(strings.TrimSpace(quantity.Text(s.source)))
		s.print(strings.Repeat(" ", max(0, AlignmentColumn-s.col-width-1)))
		s.formatAmount(amount)
		spacing = " "
	}

	if price := node.FirstChild(syntax.KindPrice); price != nil {
		s.print(spacing)
		if err := s.formatPrice(price); err != nil {
			return err
		}
		spacing = " "
	}

	if assertion := node.FirstChild(syntax.KindBalanceAssertion); assertion != nil {
		s.print(spacing)
		if err := s.formatBalanceAssertion(assertion); err != nil {
			return err
		}
		spacing = " "
	}

	if note := node.FirstChild(syntax.KindNote); note != nil {
		s.print(spacing)
		s.print(strings.TrimSpace(note.Text(s.source)))
	}

	s.println("")
	return nil
}

// formatAmount emits the trimmed quantity followed by the trimmed
// commodity when present. Digits pass through verbatim.
func (s *state) formatAmount(node *syntax.Node) {
	if negative := node.FirstChild(syntax.KindNegativeQuantity); negative != nil {
		s.print(strings.TrimSpace(negative.Text(s.source)))
	}
	if quantity := node.FirstChild(syntax.KindQuantity); quantity != nil {
		s.print(strings.TrimSpace(quantity.Text(s.source)))
	}
	if commodity := node.FirstChild(syntax.KindCommodity); commodity != nil {
		s.print(" ")
		s.print(strings.TrimSpace(commodity.Text(s.source)))
	}
}

// formatPrice emits the price marker verbatim ("@" unit or "@@" total)
// followed by the nested amount.
func (s *state) formatPrice(node *syntax.Node) error {
	token := node.Child(0)
	if token == nil {
		return errAt(node, "price marker")
	}
	s.printNode(token)
	s.print(" ")

	amount := node.FirstChild(syntax.KindAmount)
	if amount == nil {
		return errAt(node, "amount")
	}
	s.formatAmount(amount)
	return nil
}

func (s *state) formatBalanceAssertion(node *syntax.Node) error {
	s.print("= ")
	amount := node.FirstChild(syntax.KindAmount)
	if amount == nil {
		return errAt(node, "amount")
	}
	s.formatAmount(amount)
	return nil
}
