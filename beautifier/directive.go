package beautifier

import (
	"strings"

	"github.com/ledgertools/ledgerfmt/syntax"
)

func (s *state) formatDirective(node *syntax.Node) error {
	child := node.Child(0)
	if child == nil {
		return errAt(node, "directive")
	}

	switch child.Kind {
	case syntax.KindOption:
		s.printNode(child)
		s.println("")
		return nil
	case syntax.KindAccountDirective:
		return s.formatAccountDirective(child)
	case syntax.KindCommodityDirective:
		return s.formatCommodityDirective(child)
	case syntax.KindTagDirective:
		return s.formatTagDirective(child)
	case syntax.KindWordDirective, syntax.KindCharDirective:
		return s.formatWordDirective(child)
	default:
		return nil
	}
}

// formatAccountDirective emits the account line followed by its recognized
// subdirectives, indented one level.
func (s *state) formatAccountDirective(node *syntax.Node) error {
	s.print("account ")
	named := node.NamedChildren()
	if len(named) == 0 {
		return errAt(node, "account name")
	}
	s.println(named[0].Text(s.source))

	s.level++
	defer func() { s.level-- }()

	for _, child := range node.Children {
		if child.Kind != syntax.KindAccountSubdirective {
			continue
		}
		inner := child.Child(0)
		if inner == nil {
			return errAt(child, "subdirective")
		}

		switch inner.Kind {
		case syntax.KindAliasSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(inner, "alias"); err != nil {
				return err
			}
		case syntax.KindNoteSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(inner, "note"); err != nil {
				return err
			}
		case syntax.KindAssertSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(inner, "assert"); err != nil {
				return err
			}
		case syntax.KindCheckSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(inner, "check"); err != nil {
				return err
			}
		case syntax.KindPayeeSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(inner, "payee"); err != nil {
				return err
			}
		case syntax.KindDefaultSubdirective:
			s.indent()
			s.println("default")
		}
	}

	return nil
}

// formatCommodityDirective has the same shape as the account directive,
// with format and nomarket in place of the account-only subdirectives.
func (s *state) formatCommodityDirective(node *syntax.Node) error {
	s.print("commodity ")
	named := node.NamedChildren()
	if len(named) == 0 {
		return errAt(node, "commodity name")
	}
	s.println(named[0].Text(s.source))

	s.level++
	defer func() { s.level-- }()

	for _, child := range node.Children {
		if child.Kind != syntax.KindCommoditySubdirective {
			continue
		}
		inner := child.Child(0)
		if inner == nil {
			return errAt(child, "subdirective")
		}

		switch inner.Kind {
		case syntax.KindAliasSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(inner, "alias"); err != nil {
				return err
			}
		case syntax.KindNoteSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(inner, "note"); err != nil {
				return err
			}
		case syntax.KindFormatSubdirective:
			s.indent()
			if err := s.formatFormatSubdirective(inner); err != nil {
				return err
			}
		case syntax.KindDefaultSubdirective:
			s.indent()
			s.println("default")
		case syntax.KindNomarketSubdirective:
			s.indent()
			s.println("nomarket")
		}
	}

	return nil
}

func (s *state) formatTagDirective(node *syntax.Node) error {
	s.print("tag ")
	tag := node.FirstChild(syntax.KindTag)
	if tag == nil {
		return errAt(node, "tag name")
	}
	s.println(strings.TrimSpace(tag.Text(s.source)))

	s.level++
	defer func() { s.level-- }()

	for _, child := range node.NamedChildren() {
		switch child.Kind {
		case syntax.KindAssertSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(child, "assert"); err != nil {
				return err
			}
		case syntax.KindCheckSubdirective:
			s.indent()
			if err := s.formatArgumentSubdirective(child, "check"); err != nil {
				return err
			}
		}
	}

	return nil
}

// formatWordDirective joins the directive's non-blank tokens with single
// spaces. It makes no distinction between the keyword and its arguments.
func (s *state) formatWordDirective(node *syntax.Node) error {
	first := true
	for _, child := range node.Children {
		if child.Kind == syntax.KindWhitespace {
			continue
		}
		value := strings.TrimSpace(child.Text(s.source))
		if value == "" {
			continue
		}
		if !first {
			s.print(" ")
		}
		s.print(value)
		first = false
	}
	s.println("")
	return nil
}

// formatArgumentSubdirective emits "<keyword> <value>" where value is the
// subdirective's verbatim argument text.
func (s *state) formatArgumentSubdirective(node *syntax.Node, keyword string) error {
	s.print(keyword)
	s.print(" ")
	value := node.FirstChild(syntax.KindValue)
	if value == nil {
		return errAt(node, "value")
	}
	s.printNode(value)
	s.println("")
	return nil
}

func (s *state) formatFormatSubdirective(node *syntax.Node) error {
	s.print("format ")
	amount := node.FirstChild(syntax.KindAmount)
	if amount == nil {
		return errAt(node, "amount")
	}
	s.formatAmount(amount)
	s.println("")
	return nil
}
