package fitz

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// objKind discriminates the PDF object types.
type objKind int

const (
	kindNull objKind = iota
	kindBool
	kindInt
	kindReal
	kindString
	kindName
	kindArray
	kindDict
	kindStream
	kindRef
)

// pdfObject is any object from a PDF file's object graph.
type pdfObject interface {
	kind() objKind
	String() string
}

type pdfNull struct{}

func (pdfNull) kind() objKind  { return kindNull }
func (pdfNull) String() string { return "null" }

type pdfBool bool

func (pdfBool) kind() objKind { return kindBool }
func (b pdfBool) String() string {
	if b {
		return "true"
	}
	return "false"
}

type pdfInt int64

func (pdfInt) kind() objKind    { return kindInt }
func (i pdfInt) String() string { return strconv.FormatInt(int64(i), 10) }

type pdfReal float64

func (pdfReal) kind() objKind { return kindReal }
func (r pdfReal) String() string {
	return strconv.FormatFloat(float64(r), 'f', -1, 64)
}

// pdfString is a PDF string object. Value holds the raw bytes after
// escape processing; hex records the written form for round-tripping.
type pdfString struct {
	value []byte
	hex   bool
}

func (pdfString) kind() objKind { return kindString }
func (s pdfString) String() string {
	if s.hex {
		return fmt.Sprintf("<%X>", s.value)
	}
	return fmt.Sprintf("(%s)", s.value)
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()

// text decodes the string to Go UTF-8 text: UTF-16BE when it carries a
// BOM, PDFDocEncoding otherwise.
func (s pdfString) text() string {
	v := s.value
	if len(v) >= 2 && v[0] == 0xFE && v[1] == 0xFF {
		out, err := utf16be.Bytes(v)
		if err == nil {
			return string(out)
		}
	}
	if len(v) >= 3 && v[0] == 0xEF && v[1] == 0xBB && v[2] == 0xBF {
		return string(v[3:])
	}
	return decodePDFDoc(v)
}

// decodePDFDoc maps PDFDocEncoding to UTF-8. Bytes in the ASCII range
// map to themselves; the handful that differ are looked up.
func decodePDFDoc(v []byte) string {
	var sb strings.Builder
	for _, c := range v {
		if r, ok := pdfDocMap[c]; ok {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(rune(c))
		}
	}
	return sb.String()
}

// The PDFDocEncoding positions that differ from Latin-1.
var pdfDocMap = map[byte]rune{
	0x18: '˘', 0x19: 'ˇ', 0x1A: 'ˆ', 0x1B: '˙',
	0x1C: '˝', 0x1D: '˛', 0x1E: '˚', 0x1F: '˜',
	0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…',
	0x84: '—', 0x85: '–', 0x86: 'ƒ', 0x87: '⁄',
	0x88: '‹', 0x89: '›', 0x8A: '−', 0x8B: '‰',
	0x8C: '„', 0x8D: '“', 0x8E: '”', 0x8F: '‘',
	0x90: '’', 0x91: '‚', 0x92: '™', 0x93: 'ﬁ',
	0x94: 'ﬂ', 0x95: 'Ł', 0x96: 'Œ', 0x97: 'Š',
	0x98: 'Ÿ', 0x99: 'Ž', 0x9A: 'ı', 0x9B: 'ł',
	0x9C: 'œ', 0x9D: 'š', 0x9E: 'ž', 0xA0: '€',
}

type pdfName string

func (pdfName) kind() objKind    { return kindName }
func (n pdfName) String() string { return "/" + string(n) }

type pdfArray []pdfObject

func (pdfArray) kind() objKind { return kindArray }
func (a pdfArray) String() string {
	parts := make([]string, len(a))
	for i, o := range a {
		parts[i] = o.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

type pdfDict map[pdfName]pdfObject

func (pdfDict) kind() objKind { return kindDict }
func (d pdfDict) String() string {
	var parts []string
	for k, v := range d {
		parts = append(parts, k.String()+" "+v.String())
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

func (d pdfDict) get(key string) pdfObject {
	return d[pdfName(key)]
}

func (d pdfDict) getName(key string) (pdfName, bool) {
	n, ok := d.get(key).(pdfName)
	return n, ok
}

func (d pdfDict) getInt(key string) (int64, bool) {
	switch v := d.get(key).(type) {
	case pdfInt:
		return int64(v), true
	case pdfReal:
		return int64(v), true
	}
	return 0, false
}

func (d pdfDict) getNumber(key string) (float64, bool) {
	switch v := d.get(key).(type) {
	case pdfInt:
		return float64(v), true
	case pdfReal:
		return float64(v), true
	}
	return 0, false
}

func (d pdfDict) getBool(key string) (bool, bool) {
	b, ok := d.get(key).(pdfBool)
	return bool(b), ok
}

func (d pdfDict) getArray(key string) (pdfArray, bool) {
	a, ok := d.get(key).(pdfArray)
	return a, ok
}

func (d pdfDict) getString(key string) (pdfString, bool) {
	s, ok := d.get(key).(pdfString)
	return s, ok
}

// pdfStream is a stream object: its dictionary plus the raw (still
// encoded) stream bytes.
type pdfStream struct {
	dict pdfDict
	raw  []byte
}

func (*pdfStream) kind() objKind { return kindStream }
func (s *pdfStream) String() string {
	return s.dict.String() + fmt.Sprintf(" stream(%d bytes)", len(s.raw))
}

// pdfRef is an indirect object reference "n g R".
type pdfRef struct {
	num, gen int
}

func (pdfRef) kind() objKind { return kindRef }
func (r pdfRef) String() string {
	return fmt.Sprintf("%d %d R", r.num, r.gen)
}

// objNumber converts an object to float64 if it is numeric.
func objNumber(o pdfObject) (float64, bool) {
	switch v := o.(type) {
	case pdfInt:
		return float64(v), true
	case pdfReal:
		return float64(v), true
	}
	return 0, false
}
