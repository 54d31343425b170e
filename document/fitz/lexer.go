package fitz

import "strconv"

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokName
	tokOperator
	// tokOther covers syntax the placement scan has no use for: strings,
	// arrays, dictionaries. Emitting them keeps operand accounting simple.
	tokOther
)

type token struct {
	kind tokenKind
	num  float64
	text string
}

// lexer tokenizes a decoded content stream. It understands PDF lexical
// structure well enough that operator keywords inside string literals or
// dictionaries can never be mistaken for real operators.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer { return &lexer{data: data} }

func (l *lexer) next() (token, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return token{}, false
	}
	c := l.data[l.pos]
	switch {
	case c == '(':
		l.skipString()
		return token{kind: tokOther}, true
	case c == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.skipDict()
		} else {
			l.skipHexString()
		}
		return token{kind: tokOther}, true
	case c == '[' || c == ']' || c == '{' || c == '}':
		l.pos++
		return token{kind: tokOther}, true
	case c == '/':
		l.pos++
		return token{kind: tokName, text: l.readName()}, true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		start := l.pos
		l.pos++
		for l.pos < len(l.data) && isNumeric(l.data[l.pos]) {
			l.pos++
		}
		n, err := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
		if err != nil {
			return token{kind: tokOther}, true
		}
		return token{kind: tokNumber, num: n}, true
	default:
		start := l.pos
		for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
			l.pos++
		}
		if l.pos == start {
			l.pos++
			return token{kind: tokOther}, true
		}
		return token{kind: tokOperator, text: string(l.data[start:l.pos])}, true
	}
}

// skipInlineImage consumes everything up to and including the EI that closes
// an inline image, including the raw binary sample data after ID.
func (l *lexer) skipInlineImage() {
	// Parameter dictionary until the ID operator.
	for {
		tok, ok := l.next()
		if !ok {
			return
		}
		if tok.kind == tokOperator && tok.text == "ID" {
			break
		}
	}
	// One whitespace byte separates ID from the sample data.
	if l.pos < len(l.data) && isSpace(l.data[l.pos]) {
		l.pos++
	}
	// The data ends at a whitespace-delimited EI.
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isSpace(l.data[i-1])
		after := i+2 >= len(l.data) || isSpace(l.data[i+2]) || isDelimiter(l.data[i+2])
		if before && after {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.data)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isSpace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) skipString() {
	l.pos++ // opening paren
	depth := 1
	for l.pos < len(l.data) && depth > 0 {
		switch l.data[l.pos] {
		case '\\':
			l.pos++ // escaped byte
		case '(':
			depth++
		case ')':
			depth--
		}
		l.pos++
	}
}

func (l *lexer) skipHexString() {
	l.pos++ // opening angle
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		l.pos++
	}
	if l.pos < len(l.data) {
		l.pos++
	}
}

func (l *lexer) skipDict() {
	l.pos += 2 // opening <<
	depth := 1
	for l.pos < len(l.data) && depth > 0 {
		switch {
		case l.data[l.pos] == '(':
			l.skipString()
			continue
		case l.data[l.pos] == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
			depth++
			l.pos += 2
			continue
		case l.data[l.pos] == '>' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '>':
			depth--
			l.pos += 2
			continue
		}
		l.pos++
	}
}

// readName decodes a name token, resolving #xx hex escapes.
func (l *lexer) readName() string {
	var out []byte
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		c := l.data[l.pos]
		if c == '#' && l.pos+2 < len(l.data) {
			if v, err := strconv.ParseUint(string(l.data[l.pos+1:l.pos+3]), 16, 8); err == nil {
				out = append(out, byte(v))
				l.pos += 3
				continue
			}
		}
		out = append(out, c)
		l.pos++
	}
	return string(out)
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool { return !isSpace(c) && !isDelimiter(c) }

func isNumeric(c byte) bool {
	return c == '.' || c == '+' || c == '-' || (c >= '0' && c <= '9')
}
