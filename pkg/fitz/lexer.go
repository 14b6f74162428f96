package fitz

import (
	"fmt"
	"strconv"
)

// tokenType classifies lexical tokens of the PDF syntax.
type tokenType int

const (
	tokEOF tokenType = iota
	tokNull
	tokBool
	tokInt
	tokReal
	tokString
	tokName
	tokArrayOpen
	tokArrayClose
	tokDictOpen
	tokDictClose
	tokKeyword // obj, endobj, stream, R, xref, trailer, startxref, ...
)

type token struct {
	typ tokenType
	val string // names, keywords, numbers (textual form)
	str []byte // string payloads
	hex bool   // string payload was written in <...> form
	num float64
	i   int64
	pos int
}

// lexer tokenises PDF data from a byte slice. Random access is needed
// for xref handling, so the input is kept in memory, same as the
// document itself.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte, pos int) *lexer {
	return &lexer{data: data, pos: pos}
}

func isWhite(c byte) bool {
	return c == 0 || c == '\t' || c == '\n' || c == '\f' || c == '\r' || c == ' '
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isWhite(c) && !isDelim(c)
}

// skipWhite advances over whitespace and comments.
func (l *lexer) skipWhite() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhite(c) {
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

// next returns the next token.
func (l *lexer) next() (token, error) {
	l.skipWhite()
	if l.pos >= len(l.data) {
		return token{typ: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.data[l.pos]
	switch {
	case c == '[':
		l.pos++
		return token{typ: tokArrayOpen, pos: start}, nil
	case c == ']':
		l.pos++
		return token{typ: tokArrayClose, pos: start}, nil
	case c == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return token{typ: tokDictOpen, pos: start}, nil
		}
		return l.lexHexString()
	case c == '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return token{typ: tokDictClose, pos: start}, nil
		}
		return token{}, fmt.Errorf("fitz: lone '>' at offset %d", start)
	case c == '(':
		return l.lexString()
	case c == '/':
		return l.lexName()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return l.lexNumber()
	case isRegular(c):
		return l.lexKeyword()
	}
	return token{}, fmt.Errorf("fitz: unexpected byte %q at offset %d", c, start)
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // '('
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return token{typ: tokString, str: out, pos: start}, nil
			}
			out = append(out, c)
		case '\\':
			if l.pos >= len(l.data) {
				break
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\r':
				// line continuation; swallow an LF after CR
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data); i++ {
						d := l.data[l.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return token{}, fmt.Errorf("fitz: unterminated string at offset %d", start)
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (l *lexer) lexHexString() (token, error) {
	start := l.pos
	l.pos++ // '<'
	var out []byte
	var hi byte
	have := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			if have {
				out = append(out, hi<<4)
			}
			return token{typ: tokString, str: out, hex: true, pos: start}, nil
		}
		if isWhite(c) {
			continue
		}
		v, ok := hexVal(c)
		if !ok {
			return token{}, fmt.Errorf("fitz: bad hex digit %q at offset %d", c, l.pos-1)
		}
		if have {
			out = append(out, hi<<4|v)
			have = false
		} else {
			hi = v
			have = true
		}
	}
	return token{}, fmt.Errorf("fitz: unterminated hex string at offset %d", start)
}

func (l *lexer) lexName() (token, error) {
	start := l.pos
	l.pos++ // '/'
	var out []byte
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		c := l.data[l.pos]
		l.pos++
		if c == '#' && l.pos+1 < len(l.data) {
			h1, ok1 := hexVal(l.data[l.pos])
			h2, ok2 := hexVal(l.data[l.pos+1])
			if ok1 && ok2 {
				out = append(out, h1<<4|h2)
				l.pos += 2
				continue
			}
		}
		out = append(out, c)
	}
	return token{typ: tokName, val: string(out), pos: start}, nil
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	real := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '.' {
			real = true
		} else if c != '+' && c != '-' && (c < '0' || c > '9') {
			break
		}
		l.pos++
	}
	text := string(l.data[start:l.pos])
	if real {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, fmt.Errorf("fitz: bad number %q at offset %d", text, start)
		}
		return token{typ: tokReal, num: f, val: text, pos: start}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, fmt.Errorf("fitz: bad number %q at offset %d", text, start)
	}
	return token{typ: tokInt, i: i, val: text, pos: start}, nil
}

func (l *lexer) lexKeyword() (token, error) {
	start := l.pos
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		l.pos++
	}
	word := string(l.data[start:l.pos])
	switch word {
	case "null":
		return token{typ: tokNull, pos: start}, nil
	case "true":
		return token{typ: tokBool, val: "true", pos: start}, nil
	case "false":
		return token{typ: tokBool, val: "false", pos: start}, nil
	}
	return token{typ: tokKeyword, val: word, pos: start}, nil
}

// peek returns the next token without consuming it.
func (l *lexer) peek() (token, error) {
	save := l.pos
	t, err := l.next()
	l.pos = save
	return t, err
}
