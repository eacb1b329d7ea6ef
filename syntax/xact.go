package syntax

// Transaction parsing. A transaction is a header line followed by indented
// note and posting lines. The header shape depends on the variant: plain
// transactions start with a date, periodic ones with ~ and an interval,
// automated ones with = and a query.

func (p *parser) parsePlainXactWrapped(ln lineSpan) *Node {
	inner := p.parsePlainXact(ln)
	return wrapXact(inner)
}

func (p *parser) parseConditionalXactWrapped(ln lineSpan, kind, headerKind string) *Node {
	inner := p.parseConditionalXact(ln, kind, headerKind)
	return wrapXact(inner)
}

func wrapXact(inner *Node) *Node {
	return &Node{
		Kind:     KindXact,
		Named:    true,
		Start:    inner.Start,
		End:      inner.End,
		Pos:      inner.Pos,
		Children: []*Node{inner},
	}
}

// parsePlainXact parses a dated transaction. Header fields appear in the
// fixed order date, =effective_date, status, (code), payee, ; note.
func (p *parser) parsePlainXact(ln lineSpan) *Node {
	node := &Node{
		Kind:  KindPlainXact,
		Named: true,
		Start: ln.start,
		End:   ln.end,
		Pos:   Position{Row: ln.row},
	}

	i := ln.start
	dateStart := i
	for i < ln.end && isDateByte(p.src[i]) {
		i++
	}
	node.Children = append(node.Children, &Node{
		Kind:  KindDate,
		Named: true,
		Start: dateStart,
		End:   i,
		Pos:   Position{Row: ln.row, Column: dateStart - ln.start},
	})

	if i < ln.end && p.src[i] == '=' {
		i++
		effStart := i
		for i < ln.end && isDateByte(p.src[i]) {
			i++
		}
		node.Children = append(node.Children, &Node{
			Kind:  KindEffectiveDate,
			Named: true,
			Start: effStart,
			End:   i,
			Pos:   Position{Row: ln.row, Column: effStart - ln.start},
		})
	}

	i = skipBlanks(p.src, i, ln.end)

	if i < ln.end && (p.src[i] == '*' || p.src[i] == '!') {
		node.Children = append(node.Children, &Node{
			Kind:  KindStatus,
			Named: true,
			Start: i,
			End:   i + 1,
			Pos:   Position{Row: ln.row, Column: i - ln.start},
		})
		i = skipBlanks(p.src, i+1, ln.end)
	}

	if i < ln.end && p.src[i] == '(' {
		codeStart := i
		for i < ln.end && p.src[i] != ')' {
			i++
		}
		if i < ln.end {
			i++ // include the closing paren
		}
		node.Children = append(node.Children, &Node{
			Kind:  KindCode,
			Named: true,
			Start: codeStart,
			End:   i,
			Pos:   Position{Row: ln.row, Column: codeStart - ln.start},
		})
		i = skipBlanks(p.src, i, ln.end)
	}

	noteStart := indexOutsideQuotes(p.src, i, ln.end, ';')
	payeeEnd := ln.end
	if noteStart >= 0 {
		payeeEnd = noteStart
	}
	if payee := p.tokenNode(KindPayee, ln, i, payeeEnd); payee != nil {
		node.Children = append(node.Children, payee)
	}
	if noteStart >= 0 {
		node.Children = append(node.Children, &Node{
			Kind:  KindNote,
			Named: true,
			Start: noteStart,
			End:   ln.end,
			Pos:   Position{Row: ln.row, Column: noteStart - ln.start},
		})
	}

	p.idx++
	p.parseXactBody(node)
	return node
}

// parseConditionalXact parses a periodic (~) or automated (=) transaction.
// headerKind is the kind of the expression following the marker.
func (p *parser) parseConditionalXact(ln lineSpan, kind, headerKind string) *Node {
	node := &Node{
		Kind:  kind,
		Named: true,
		Start: ln.start,
		End:   ln.end,
		Pos:   Position{Row: ln.row},
	}

	i := ln.start + 1 // past the ~ or = marker
	noteStart := indexOutsideQuotes(p.src, i, ln.end, ';')
	headerEnd := ln.end
	if noteStart >= 0 {
		headerEnd = noteStart
	}
	if header := p.tokenNode(headerKind, ln, i, headerEnd); header != nil {
		node.Children = append(node.Children, header)
	}
	if noteStart >= 0 {
		node.Children = append(node.Children, &Node{
			Kind:  KindNote,
			Named: true,
			Start: noteStart,
			End:   ln.end,
			Pos:   Position{Row: ln.row, Column: noteStart - ln.start},
		})
	}

	p.idx++
	p.parseXactBody(node)
	return node
}

// parseXactBody consumes the indented note and posting lines following a
// transaction header and appends them to node.
func (p *parser) parseXactBody(node *Node) {
	for p.idx < len(p.lines) {
		ln := p.lines[p.idx]
		if p.isBlank(ln) || p.indentWidth(ln) == 0 {
			return
		}

		contentStart := ln.start + p.indentWidth(ln)
		var child *Node
		if p.src[contentStart] == ';' {
			child = &Node{
				Kind:  KindNote,
				Named: true,
				Start: contentStart,
				End:   ln.end,
				Pos:   Position{Row: ln.row, Column: contentStart - ln.start},
			}
		} else {
			child = p.parsePosting(ln, contentStart)
		}

		node.Children = append(node.Children, child)
		node.End = ln.end
		p.idx++
	}
}

// parsePosting parses one posting line: status, account, then optionally
// an amount, a price, a balance assertion and a trailing note. The account
// is separated from the amount by two or more blanks.
func (p *parser) parsePosting(ln lineSpan, contentStart int) *Node {
	node := &Node{
		Kind:  KindPosting,
		Named: true,
		Start: contentStart,
		End:   ln.end,
		Pos:   Position{Row: ln.row, Column: contentStart - ln.start},
	}

	i := contentStart
	if (p.src[i] == '*' || p.src[i] == '!') && i+1 < ln.end && isBlankByte(p.src[i+1]) {
		node.Children = append(node.Children, &Node{
			Kind:  KindStatus,
			Named: true,
			Start: i,
			End:   i + 1,
			Pos:   Position{Row: ln.row, Column: i - ln.start},
		})
		i = skipBlanks(p.src, i+1, ln.end)
	}

	accountEnd := i
	for accountEnd < ln.end {
		b := p.src[accountEnd]
		if b == '\t' || b == ';' {
			break
		}
		if b == ' ' && accountEnd+1 < ln.end && p.src[accountEnd+1] == ' ' {
			break
		}
		if b == ' ' && accountEnd+1 >= ln.end {
			break
		}
		accountEnd++
	}
	if account := p.tokenNode(KindAccount, ln, i, accountEnd); account != nil {
		node.Children = append(node.Children, account)
	}
	i = skipBlanks(p.src, accountEnd, ln.end)

	if i >= ln.end {
		return node
	}

	if p.src[i] != ';' {
		stop := postingFieldEnd(p.src, i, ln.end)
		if stop > i {
			amount := p.parseAmountSpan(ln, i, stop)
			if amount == nil {
				return p.errorPosting(ln, contentStart)
			}
			// A posting amount must carry a quantity; a bare commodity
			// has nothing to align.
			if amount.FirstChild(KindQuantity) == nil && amount.FirstChild(KindNegativeQuantity) == nil {
				return p.errorPosting(ln, contentStart)
			}
			node.Children = append(node.Children, amount)
			i = skipBlanks(p.src, stop, ln.end)
		}

		if i < ln.end && p.src[i] == '@' {
			price, next := p.parsePrice(ln, i)
			if price == nil {
				return p.errorPosting(ln, contentStart)
			}
			node.Children = append(node.Children, price)
			i = skipBlanks(p.src, next, ln.end)
		}

		if i < ln.end && p.src[i] == '=' {
			assertion, next := p.parseBalanceAssertion(ln, i)
			if assertion == nil {
				return p.errorPosting(ln, contentStart)
			}
			node.Children = append(node.Children, assertion)
			i = skipBlanks(p.src, next, ln.end)
		}
	}

	if i < ln.end {
		if p.src[i] != ';' {
			return p.errorPosting(ln, contentStart)
		}
		node.Children = append(node.Children, &Node{
			Kind:  KindNote,
			Named: true,
			Start: i,
			End:   ln.end,
			Pos:   Position{Row: ln.row, Column: i - ln.start},
		})
	}

	return node
}

func (p *parser) errorPosting(ln lineSpan, contentStart int) *Node {
	p.hasError = true
	return &Node{
		Kind:  KindError,
		Named: true,
		Start: contentStart,
		End:   ln.end,
		Pos:   Position{Row: ln.row, Column: contentStart - ln.start},
	}
}

// parsePrice parses "@ amount" or "@@ amount" starting at the @ sign.
// Returns the node and the offset just past the consumed span.
func (p *parser) parsePrice(ln lineSpan, i int) (*Node, int) {
	tokenEnd := i + 1
	if tokenEnd < ln.end && p.src[tokenEnd] == '@' {
		tokenEnd++
	}
	token := &Node{
		Kind:  string(p.src[i:tokenEnd]),
		Start: i,
		End:   tokenEnd,
		Pos:   Position{Row: ln.row, Column: i - ln.start},
	}

	start := skipBlanks(p.src, tokenEnd, ln.end)
	stop := postingFieldEnd(p.src, start, ln.end)
	amount := p.parseAmountSpan(ln, start, stop)
	if amount == nil {
		return nil, stop
	}

	return &Node{
		Kind:     KindPrice,
		Named:    true,
		Start:    i,
		End:      amount.End,
		Pos:      token.Pos,
		Children: []*Node{token, amount},
	}, stop
}

// parseBalanceAssertion parses "= amount" (or "== amount") starting at the
// equals sign.
func (p *parser) parseBalanceAssertion(ln lineSpan, i int) (*Node, int) {
	start := i + 1
	if start < ln.end && p.src[start] == '=' {
		start++
	}
	start = skipBlanks(p.src, start, ln.end)
	stop := postingFieldEnd(p.src, start, ln.end)
	amount := p.parseAmountSpan(ln, start, stop)
	if amount == nil {
		return nil, stop
	}

	return &Node{
		Kind:     KindBalanceAssertion,
		Named:    true,
		Start:    i,
		End:      amount.End,
		Pos:      Position{Row: ln.row, Column: i - ln.start},
		Children: []*Node{amount},
	}, stop
}

// parseAmountSpan parses a commodity/quantity pair inside [start, end).
// The commodity may precede or follow the quantity, and may be quoted.
// Returns nil when the span holds anything else.
func (p *parser) parseAmountSpan(ln lineSpan, start, end int) *Node {
	start, end = trimSpan(p.src, start, end)
	if start >= end {
		return nil
	}

	var children []*Node
	i := start

	if !isQuantityStart(p.src, i, end) {
		commodity, next := p.scanCommodity(ln, i, end)
		if commodity == nil {
			return nil
		}
		children = append(children, commodity)
		i = skipBlanks(p.src, next, end)
	}

	if i < end && isQuantityStart(p.src, i, end) {
		qtyStart := i
		kind := KindQuantity
		if p.src[i] == '-' {
			kind = KindNegativeQuantity
			i++
		}
		for i < end && isQuantityByte(p.src[i]) {
			i++
		}
		children = append(children, &Node{
			Kind:  kind,
			Named: true,
			Start: qtyStart,
			End:   i,
			Pos:   Position{Row: ln.row, Column: qtyStart - ln.start},
		})
		i = skipBlanks(p.src, i, end)
	}

	if i < end {
		// A trailing commodity is only valid when none came first.
		if len(children) > 0 && children[0].Kind == KindCommodity {
			return nil
		}
		commodity, next := p.scanCommodity(ln, i, end)
		if commodity == nil {
			return nil
		}
		if skipBlanks(p.src, next, end) < end {
			return nil
		}
		children = append(children, commodity)
		i = next
	}

	if len(children) == 0 {
		return nil
	}

	return &Node{
		Kind:     KindAmount,
		Named:    true,
		Start:    children[0].Start,
		End:      children[len(children)-1].End,
		Pos:      children[0].Pos,
		Children: children,
	}
}

// scanCommodity scans a commodity symbol: either a quoted string or a run
// of symbol bytes. Returns the node and the offset just past it.
func (p *parser) scanCommodity(ln lineSpan, i, end int) (*Node, int) {
	start := i

	if p.src[i] == '"' {
		i++
		for i < end && p.src[i] != '"' {
			i++
		}
		if i >= end {
			return nil, i
		}
		i++
	} else {
		for i < end && isCommodityByte(p.src[i]) {
			i++
		}
		if i == start {
			return nil, i
		}
	}

	return &Node{
		Kind:  KindCommodity,
		Named: true,
		Start: start,
		End:   i,
		Pos:   Position{Row: ln.row, Column: start - ln.start},
	}, i
}

// postingFieldEnd finds where the current posting field stops: at a price,
// balance assertion or note marker outside quotes, or at end of line.
func postingFieldEnd(src []byte, start, end int) int {
	inQuotes := false
	for i := start; i < end; i++ {
		b := src[i]
		if b == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if b == '@' || b == '=' || b == ';' {
			return i
		}
	}
	return end
}

// indexOutsideQuotes finds the first occurrence of b outside double quotes,
// or -1.
func indexOutsideQuotes(src []byte, start, end int, b byte) int {
	inQuotes := false
	for i := start; i < end; i++ {
		if src[i] == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes && src[i] == b {
			return i
		}
	}
	return -1
}

func skipBlanks(src []byte, i, end int) int {
	for i < end && isBlankByte(src[i]) {
		i++
	}
	return i
}

func isBlankByte(b byte) bool {
	return b == ' ' || b == '\t'
}

func isDateByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-' || b == '/' || b == '.'
}

func isQuantityStart(src []byte, i, end int) bool {
	if i >= end {
		return false
	}
	if src[i] >= '0' && src[i] <= '9' {
		return true
	}
	return src[i] == '-' && i+1 < end && src[i+1] >= '0' && src[i+1] <= '9'
}

func isQuantityByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == ','
}

// isCommodityByte accepts the bytes a bare commodity symbol may contain:
// anything except blanks, digits and the posting field punctuation.
func isCommodityByte(b byte) bool {
	if b >= '0' && b <= '9' {
		return false
	}
	switch b {
	case ' ', '\t', '@', '=', ';', '"', '-':
		return false
	}
	return true
}
