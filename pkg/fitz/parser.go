package fitz

import (
	"fmt"
)

// parser builds PDF objects from a token stream. Stream lengths can be
// indirect, so the parser is given a resolver to chase references; a
// nil resolver treats unresolved lengths as zero and falls back to
// scanning for "endstream".
type parser struct {
	lex     *lexer
	resolve func(pdfRef) pdfObject
}

func newParser(data []byte, pos int, resolve func(pdfRef) pdfObject) *parser {
	return &parser{lex: newLexer(data, pos), resolve: resolve}
}

// parseObject parses one object, including "n g R" references and
// trailing stream payloads.
func (p *parser) parseObject() (pdfObject, error) {
	t, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	return p.objectFromToken(t)
}

func (p *parser) objectFromToken(t token) (pdfObject, error) {
	switch t.typ {
	case tokNull:
		return pdfNull{}, nil
	case tokBool:
		return pdfBool(t.val == "true"), nil
	case tokReal:
		return pdfReal(t.num), nil
	case tokString:
		return pdfString{value: t.str, hex: t.hex}, nil
	case tokName:
		return pdfName(t.val), nil
	case tokArrayOpen:
		return p.parseArray()
	case tokDictOpen:
		return p.parseDictOrStream()
	case tokInt:
		return p.parseIntOrRef(t)
	case tokEOF:
		return nil, fmt.Errorf("fitz: unexpected end of data at offset %d", t.pos)
	}
	return nil, fmt.Errorf("fitz: unexpected token %q at offset %d", t.val, t.pos)
}

// parseIntOrRef disambiguates "5", "5 0 R" and "5 0 obj" by lookahead.
func (p *parser) parseIntOrRef(t token) (pdfObject, error) {
	save := p.lex.pos
	t2, err := p.lex.next()
	if err != nil || t2.typ != tokInt {
		p.lex.pos = save
		return pdfInt(t.i), nil
	}
	t3, err := p.lex.next()
	if err == nil && t3.typ == tokKeyword && t3.val == "R" {
		return pdfRef{num: int(t.i), gen: int(t2.i)}, nil
	}
	p.lex.pos = save
	return pdfInt(t.i), nil
}

func (p *parser) parseArray() (pdfObject, error) {
	arr := pdfArray{}
	for {
		t, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if t.typ == tokArrayClose {
			return arr, nil
		}
		if t.typ == tokEOF {
			return nil, fmt.Errorf("fitz: unterminated array")
		}
		obj, err := p.objectFromToken(t)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *parser) parseDictOrStream() (pdfObject, error) {
	dict := pdfDict{}
	for {
		t, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if t.typ == tokDictClose {
			break
		}
		if t.typ != tokName {
			return nil, fmt.Errorf("fitz: dictionary key is not a name at offset %d", t.pos)
		}
		val, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		dict[pdfName(t.val)] = val
	}

	// A "stream" keyword after the dictionary turns it into a stream
	// object; otherwise put the token back.
	save := p.lex.pos
	t, err := p.lex.next()
	if err != nil || t.typ != tokKeyword || t.val != "stream" {
		p.lex.pos = save
		return dict, nil
	}
	return p.parseStreamPayload(dict)
}

func (p *parser) parseStreamPayload(dict pdfDict) (pdfObject, error) {
	data := p.lex.data
	pos := p.lex.pos
	// The keyword is followed by CRLF or LF.
	if pos < len(data) && data[pos] == '\r' {
		pos++
	}
	if pos < len(data) && data[pos] == '\n' {
		pos++
	}

	length := int64(-1)
	switch v := dict.get("Length").(type) {
	case pdfInt:
		length = int64(v)
	case pdfRef:
		if p.resolve != nil {
			if n, ok := objNumber(p.resolve(v)); ok {
				length = int64(n)
			}
		}
	}

	var raw []byte
	if length >= 0 && pos+int(length) <= len(data) {
		raw = data[pos : pos+int(length)]
		p.lex.pos = pos + int(length)
		// Validate: "endstream" should follow (possibly after EOL).
		p.lex.skipWhite()
		t, err := p.lex.next()
		if err != nil || t.typ != tokKeyword || t.val != "endstream" {
			// Length lied; rescan.
			raw = nil
		}
	}
	if raw == nil {
		end := indexBytes(data, pos, "endstream")
		if end < 0 {
			return nil, fmt.Errorf("fitz: missing endstream")
		}
		stop := end
		// Strip the EOL that precedes the keyword.
		if stop > pos && data[stop-1] == '\n' {
			stop--
		}
		if stop > pos && data[stop-1] == '\r' {
			stop--
		}
		raw = data[pos:stop]
		p.lex.pos = end + len("endstream")
	}
	return &pdfStream{dict: dict, raw: raw}, nil
}

// indexBytes finds the next occurrence of the keyword at or after from.
func indexBytes(data []byte, from int, kw string) int {
	for i := from; i+len(kw) <= len(data); i++ {
		if string(data[i:i+len(kw)]) == kw {
			return i
		}
	}
	return -1
}

// parseIndirect parses "n g obj ... endobj" at the lexer position and
// returns the contained object.
func (p *parser) parseIndirect() (int, int, pdfObject, error) {
	t1, err := p.lex.next()
	if err != nil {
		return 0, 0, nil, err
	}
	t2, err := p.lex.next()
	if err != nil {
		return 0, 0, nil, err
	}
	t3, err := p.lex.next()
	if err != nil {
		return 0, 0, nil, err
	}
	if t1.typ != tokInt || t2.typ != tokInt || t3.typ != tokKeyword || t3.val != "obj" {
		return 0, 0, nil, fmt.Errorf("fitz: malformed indirect object at offset %d", t1.pos)
	}
	obj, err := p.parseObject()
	if err != nil {
		return 0, 0, nil, err
	}
	return int(t1.i), int(t2.i), obj, nil
}
