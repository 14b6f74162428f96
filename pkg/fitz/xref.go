package fitz

import (
	"bytes"
	"fmt"
	"strconv"
)

// xrefEntry locates an object: either a byte offset into the file, or
// a slot in a compressed object stream.
type xrefEntry struct {
	offset     int64
	gen        int
	inUse      bool
	compressed bool
	streamNum  int // object number of the containing ObjStm
	streamIdx  int
}

// findStartXref scans the file tail for the startxref offset.
func findStartXref(data []byte) (int64, error) {
	tail := data
	if len(tail) > 2048 {
		tail = tail[len(tail)-2048:]
	}
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("fitz: missing startxref")
	}
	lex := newLexer(tail, i+len("startxref"))
	t, err := lex.next()
	if err != nil || t.typ != tokInt {
		return 0, fmt.Errorf("fitz: malformed startxref")
	}
	return t.i, nil
}

// loadXref reads the xref section at the given offset, following /Prev
// chains, and merges entries oldest-last (existing entries win, since
// later updates are read first).
func (d *Document) loadXref(offset int64) error {
	st := d.d
	seen := map[int64]bool{}
	for offset > 0 {
		if seen[offset] {
			return fmt.Errorf("fitz: circular xref chain")
		}
		seen[offset] = true
		if offset >= int64(len(st.data)) {
			return fmt.Errorf("fitz: xref offset %d beyond end of file", offset)
		}

		lex := newLexer(st.data, int(offset))
		t, err := lex.peek()
		if err != nil {
			return err
		}
		var trailer pdfDict
		if t.typ == tokKeyword && t.val == "xref" {
			trailer, err = d.loadXrefTable(lex)
		} else {
			trailer, err = d.loadXrefStream(int(offset))
		}
		if err != nil {
			return err
		}
		if st.trailer == nil {
			st.trailer = trailer
		} else {
			for k, v := range trailer {
				if _, ok := st.trailer[k]; !ok {
					st.trailer[k] = v
				}
			}
		}

		offset = 0
		if prev, ok := trailer.getInt("Prev"); ok {
			offset = prev
		}
		// Hybrid files point at an xref stream from /XRefStm; load it
		// for the compressed entries before the Prev section.
		if xs, ok := trailer.getInt("XRefStm"); ok && !seen[xs] {
			seen[xs] = true
			if _, err := d.loadXrefStream(int(xs)); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadXrefTable parses a classic "xref" table followed by "trailer".
func (d *Document) loadXrefTable(lex *lexer) (pdfDict, error) {
	st := d.d
	if _, err := lex.next(); err != nil { // "xref"
		return nil, err
	}
	for {
		t, err := lex.peek()
		if err != nil {
			return nil, err
		}
		if t.typ == tokKeyword && t.val == "trailer" {
			lex.next()
			break
		}
		if t.typ != tokInt {
			return nil, fmt.Errorf("fitz: malformed xref subsection at offset %d", t.pos)
		}
		startTok, _ := lex.next()
		countTok, err := lex.next()
		if err != nil || countTok.typ != tokInt {
			return nil, fmt.Errorf("fitz: malformed xref subsection")
		}
		start, count := int(startTok.i), int(countTok.i)
		lex.skipWhite()
		for i := 0; i < count; i++ {
			if lex.pos+18 > len(lex.data) {
				return nil, fmt.Errorf("fitz: truncated xref table")
			}
			line := lex.data[lex.pos : lex.pos+18]
			off, err1 := strconv.ParseInt(string(bytes.TrimSpace(line[0:10])), 10, 64)
			gen, err2 := strconv.Atoi(string(bytes.TrimSpace(line[11:16])))
			typ := line[17]
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("fitz: malformed xref entry %d", start+i)
			}
			num := start + i
			if _, ok := st.xref[num]; !ok {
				st.xref[num] = xrefEntry{offset: off, gen: gen, inUse: typ == 'n'}
			}
			// Entries are padded to 20 bytes but some writers use 19.
			lex.pos += 18
			for lex.pos < len(lex.data) && (lex.data[lex.pos] == ' ' || lex.data[lex.pos] == '\r' || lex.data[lex.pos] == '\n') {
				lex.pos++
			}
		}
	}
	p := &parser{lex: lex}
	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	trailer, ok := obj.(pdfDict)
	if !ok {
		return nil, fmt.Errorf("fitz: trailer is not a dictionary")
	}
	return trailer, nil
}

// loadXrefStream parses a PDF 1.5 cross-reference stream.
func (d *Document) loadXrefStream(offset int) (pdfDict, error) {
	st := d.d
	p := newParser(st.data, offset, nil)
	_, _, obj, err := p.parseIndirect()
	if err != nil {
		return nil, err
	}
	stm, ok := obj.(*pdfStream)
	if !ok {
		return nil, fmt.Errorf("fitz: xref stream expected at offset %d", offset)
	}
	data, err := d.decodeStream(stm)
	if err != nil {
		return nil, err
	}

	wArr, ok := stm.dict.getArray("W")
	if !ok || len(wArr) < 3 {
		return nil, fmt.Errorf("fitz: xref stream missing /W")
	}
	var w [3]int
	for i := 0; i < 3; i++ {
		n, _ := objNumber(wArr[i])
		w[i] = int(n)
	}
	size, _ := stm.dict.getInt("Size")

	var index []int
	if idx, ok := stm.dict.getArray("Index"); ok {
		for _, o := range idx {
			n, _ := objNumber(o)
			index = append(index, int(n))
		}
	} else {
		index = []int{0, int(size)}
	}

	rowLen := w[0] + w[1] + w[2]
	pos := 0
	readField := func(n int) int64 {
		var v int64
		for i := 0; i < n; i++ {
			v = v<<8 | int64(data[pos])
			pos++
		}
		return v
	}
	for i := 0; i+1 < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+rowLen > len(data) {
				return stm.dict, nil
			}
			typ := int64(1)
			if w[0] > 0 {
				typ = readField(w[0])
			}
			f2 := readField(w[1])
			f3 := readField(w[2])
			num := start + j
			if _, ok := st.xref[num]; ok {
				continue
			}
			switch typ {
			case 0:
				st.xref[num] = xrefEntry{inUse: false}
			case 1:
				st.xref[num] = xrefEntry{offset: f2, gen: int(f3), inUse: true}
			case 2:
				st.xref[num] = xrefEntry{
					inUse: true, compressed: true,
					streamNum: int(f2), streamIdx: int(f3),
				}
			}
		}
	}
	return stm.dict, nil
}

// loadFromObjectStream extracts object idx for object number num from
// the object stream with the given object number.
func (d *Document) loadFromObjectStream(stmNum, idx, wantNum int) (pdfObject, error) {
	obj, err := d.loadObjectAt(stmNum)
	if err != nil {
		return nil, err
	}
	stm, ok := obj.(*pdfStream)
	if !ok {
		return nil, fmt.Errorf("fitz: object stream %d is not a stream", stmNum)
	}
	data, err := d.decodeStream(stm)
	if err != nil {
		return nil, err
	}
	n, _ := stm.dict.getInt("N")
	first, _ := stm.dict.getInt("First")

	lex := newLexer(data, 0)
	var num, off int
	found := false
	for i := 0; i < int(n); i++ {
		tn, err1 := lex.next()
		to, err2 := lex.next()
		if err1 != nil || err2 != nil || tn.typ != tokInt || to.typ != tokInt {
			return nil, fmt.Errorf("fitz: malformed object stream header")
		}
		if i == idx {
			num, off = int(tn.i), int(to.i)
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("fitz: object %d not found in stream %d", wantNum, stmNum)
	}
	if num != wantNum {
		return nil, fmt.Errorf("fitz: object stream %d slot %d holds %d, want %d", stmNum, idx, num, wantNum)
	}
	p := newParser(data, int(first)+off, d.resolve)
	return p.parseObject()
}
