package fitz

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// engineFont is a loaded page font: decode tables plus a truetype face
// for rasterisation. Fonts without a usable embedded program get a Go
// font as substitute face.
type engineFont struct {
	info FontInfo

	widths       map[int]float64 // code -> width, 1/1000 em
	defaultWidth float64
	toUnicode    map[int]rune
	differences  map[int]rune
	twoByte      bool // Type0/Identity codes
	wmode        int

	ascent  float64 // fraction of em
	descent float64
}

type glyphInfo struct {
	code    int
	r       rune
	width   float64 // 1/1000 em
	isSpace bool
}

var substituteFaces struct {
	once                        sync.Once
	regular, bold, italic, mono *truetype.Font
}

func loadSubstituteFaces() {
	substituteFaces.once.Do(func() {
		substituteFaces.regular, _ = truetype.Parse(goregular.TTF)
		substituteFaces.bold, _ = truetype.Parse(gobold.TTF)
		substituteFaces.italic, _ = truetype.Parse(goitalic.TTF)
		substituteFaces.mono, _ = truetype.Parse(gomono.TTF)
	})
}

func substituteFace(f *FontInfo) *truetype.Font {
	loadSubstituteFaces()
	switch {
	case f.IsMono:
		return substituteFaces.mono
	case f.IsBold:
		return substituteFaces.bold
	case f.IsItalic:
		return substituteFaces.italic
	}
	return substituteFaces.regular
}

// fallbackFont is used when a show operator runs without Tf.
func (ip *interpreter) fallbackFont() *engineFont {
	return ip.loadFontCached("\x00fallback", func() *engineFont {
		f := &engineFont{
			info:         FontInfo{Name: "Helvetica", Substitute: true},
			defaultWidth: 500,
			ascent:       0.8,
			descent:      -0.2,
		}
		f.info.ttf = substituteFace(&f.info)
		return f
	})
}

func (ip *interpreter) loadFontCached(key string, build func() *engineFont) *engineFont {
	st := ip.doc.d
	if f, ok := st.fonts[key]; ok {
		return f
	}
	f := build()
	st.fonts[key] = f
	return f
}

// loadFont resolves a /Font resource name to an engine font.
func (ip *interpreter) loadFont(res pdfDict, name string) *engineFont {
	d := &Document{d: ip.doc.d}
	var dict pdfDict
	var key string
	if res != nil {
		if fonts, ok := d.resolveShallow(res.get("Font")).(pdfDict); ok {
			raw := fonts.get(name)
			if ref, ok := raw.(pdfRef); ok {
				key = fmt.Sprintf("ref:%d", ref.num)
			}
			dict, _ = d.resolveShallow(raw).(pdfDict)
		}
	}
	if dict == nil {
		return ip.fallbackFont()
	}
	if key == "" {
		key = "name:" + name
	}
	return ip.loadFontCached(key, func() *engineFont {
		return d.buildFont(dict)
	})
}

func (d *Document) buildFont(dict pdfDict) *engineFont {
	f := &engineFont{
		widths:       map[int]float64{},
		defaultWidth: 500,
		ascent:       0.8,
		descent:      -0.2,
	}

	base, _ := dict.getName("BaseFont")
	f.info.Name = cleanFontName(string(base))
	lower := strings.ToLower(f.info.Name)
	f.info.IsBold = strings.Contains(lower, "bold")
	f.info.IsItalic = strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
	f.info.IsMono = strings.Contains(lower, "courier") || strings.Contains(lower, "mono")

	sub, _ := dict.getName("Subtype")
	if sub == "Type0" {
		d.buildType0(dict, f)
		return f
	}

	// Simple font: /FirstChar + /Widths.
	first := int64(0)
	if v, ok := dict.getInt("FirstChar"); ok {
		first = v
	}
	if ws, ok := d.resolveShallow(dict.get("Widths")).(pdfArray); ok {
		for i, o := range ws {
			if w, ok := objNumber(d.resolveShallow(o)); ok {
				f.widths[int(first)+i] = w
			}
		}
	}

	d.applyEncoding(dict, f)
	d.applyToUnicode(dict, f)
	d.applyDescriptor(dict, f)

	if f.info.ttf == nil {
		f.info.Substitute = true
		f.info.ttf = substituteFace(&f.info)
	}
	return f
}

func cleanFontName(name string) string {
	// Strip the "ABCDEF+" subset prefix.
	if len(name) > 7 && name[6] == '+' {
		return name[7:]
	}
	return name
}

func (d *Document) buildType0(dict pdfDict, f *engineFont) {
	f.twoByte = true
	if enc, ok := dict.getName("Encoding"); ok && strings.HasSuffix(string(enc), "-V") {
		f.wmode = 1
	}
	desc, ok := d.resolveShallow(dict.get("DescendantFonts")).(pdfArray)
	if !ok || len(desc) == 0 {
		return
	}
	cid, ok := d.resolveShallow(desc[0]).(pdfDict)
	if !ok {
		return
	}
	if dw, ok := cid.getNumber("DW"); ok {
		f.defaultWidth = dw
	} else {
		f.defaultWidth = 1000
	}
	// /W is runs of "c [w...]" or "c1 c2 w".
	if w, ok := d.resolveShallow(cid.get("W")).(pdfArray); ok {
		i := 0
		for i < len(w) {
			c1, ok1 := objNumber(d.resolveShallow(w[i]))
			if !ok1 || i+1 >= len(w) {
				break
			}
			switch second := d.resolveShallow(w[i+1]).(type) {
			case pdfArray:
				for j, o := range second {
					if wv, ok := objNumber(d.resolveShallow(o)); ok {
						f.widths[int(c1)+j] = wv
					}
				}
				i += 2
			default:
				if i+2 >= len(w) {
					i = len(w)
					break
				}
				c2, _ := objNumber(second)
				wv, _ := objNumber(d.resolveShallow(w[i+2]))
				for c := int(c1); c <= int(c2); c++ {
					f.widths[c] = wv
				}
				i += 3
			}
		}
	}
	d.applyToUnicode(dict, f)
	d.applyDescriptor(cid, f)
	if f.info.ttf == nil {
		f.info.Substitute = true
		f.info.ttf = substituteFace(&f.info)
	}
}

func (d *Document) applyDescriptor(dict pdfDict, f *engineFont) {
	fd, ok := d.resolveShallow(dict.get("FontDescriptor")).(pdfDict)
	if !ok {
		return
	}
	if flags, ok := fd.getInt("Flags"); ok {
		f.info.IsMono = f.info.IsMono || flags&1 != 0
		f.info.IsSerif = flags&2 != 0
		f.info.IsItalic = f.info.IsItalic || flags&64 != 0
	}
	if a, ok := fd.getNumber("Ascent"); ok && a != 0 {
		f.ascent = a / 1000
	}
	if de, ok := fd.getNumber("Descent"); ok && de != 0 {
		f.descent = de / 1000
	}
	if mw, ok := fd.getNumber("MissingWidth"); ok && mw != 0 {
		f.defaultWidth = mw
	}
	if ff, ok := d.resolveShallow(fd.get("FontFile2")).(*pdfStream); ok {
		if data, err := d.decodeStream(ff); err == nil {
			if face, err := truetype.Parse(data); err == nil {
				f.info.ttf = face
				return
			}
		}
	}
	// Type1 (FontFile) and CFF (FontFile3) programs are not parsed;
	// a substitute face stands in.
}

// applyEncoding reads /Encoding for simple fonts. Codes default to
// Latin-1; /Differences overrides individual positions.
func (d *Document) applyEncoding(dict pdfDict, f *engineFont) {
	enc := d.resolveShallow(dict.get("Encoding"))
	encDict, ok := enc.(pdfDict)
	if !ok {
		return
	}
	diffs, ok := encDict.getArray("Differences")
	if !ok {
		return
	}
	f.differences = map[int]rune{}
	code := 0
	for _, o := range diffs {
		switch v := o.(type) {
		case pdfInt:
			code = int(v)
		case pdfName:
			if r, ok := glyphNameToRune(string(v)); ok {
				f.differences[code] = r
			}
			code++
		}
	}
}

// applyToUnicode parses the /ToUnicode CMap's bfchar and bfrange
// sections.
func (d *Document) applyToUnicode(dict pdfDict, f *engineFont) {
	stm, ok := d.resolveShallow(dict.get("ToUnicode")).(*pdfStream)
	if !ok {
		return
	}
	data, err := d.decodeStream(stm)
	if err != nil {
		return
	}
	f.toUnicode = parseToUnicodeCMap(data)
}

func parseToUnicodeCMap(data []byte) map[int]rune {
	out := map[int]rune{}
	lex := newLexer(data, 0)
	var pending []token
	for {
		t, err := lex.next()
		if err != nil {
			lex.pos++
			continue
		}
		if t.typ == tokEOF {
			return out
		}
		if t.typ != tokKeyword {
			pending = append(pending, t)
			if len(pending) > 64 {
				pending = pending[1:]
			}
			continue
		}
		switch t.val {
		case "beginbfchar":
			for {
				src, err := lex.next()
				if err != nil || src.typ == tokEOF {
					return out
				}
				if src.typ == tokKeyword { // endbfchar
					break
				}
				dst, err := lex.next()
				if err != nil || dst.typ != tokString || src.typ != tokString {
					break
				}
				out[bytesToCode(src.str)] = utf16beFirstRune(dst.str)
			}
		case "beginbfrange":
			for {
				lo, err := lex.next()
				if err != nil || lo.typ == tokEOF {
					return out
				}
				if lo.typ == tokKeyword { // endbfrange
					break
				}
				hi, err1 := lex.next()
				dst, err2 := lex.next()
				if err1 != nil || err2 != nil || lo.typ != tokString || hi.typ != tokString {
					break
				}
				loC, hiC := bytesToCode(lo.str), bytesToCode(hi.str)
				switch dv := dst.typ; dv {
				case tokString:
					base := utf16beFirstRune(dst.str)
					for c := loC; c <= hiC && c-loC < 65536; c++ {
						out[c] = base + rune(c-loC)
					}
				case tokArrayOpen:
					for c := loC; ; c++ {
						e, err := lex.next()
						if err != nil || e.typ == tokArrayClose || e.typ == tokEOF {
							break
						}
						if e.typ == tokString {
							out[c] = utf16beFirstRune(e.str)
						}
					}
				}
			}
		}
		pending = pending[:0]
	}
}

func bytesToCode(b []byte) int {
	c := 0
	for _, v := range b {
		c = c<<8 | int(v)
	}
	return c
}

func utf16beFirstRune(b []byte) rune {
	if len(b) >= 4 {
		hi := rune(b[0])<<8 | rune(b[1])
		lo := rune(b[2])<<8 | rune(b[3])
		if hi >= 0xD800 && hi < 0xDC00 && lo >= 0xDC00 && lo < 0xE000 {
			return (hi-0xD800)<<10 + (lo - 0xDC00) + 0x10000
		}
	}
	if len(b) >= 2 {
		return rune(b[0])<<8 | rune(b[1])
	}
	if len(b) == 1 {
		return rune(b[0])
	}
	return 0xFFFD
}

// decode splits a show-string into glyphs with widths and runes.
func (f *engineFont) decode(raw []byte) []glyphInfo {
	var out []glyphInfo
	if f.twoByte {
		for i := 0; i+1 < len(raw); i += 2 {
			code := int(raw[i])<<8 | int(raw[i+1])
			out = append(out, f.glyph(code))
		}
		return out
	}
	for _, b := range raw {
		out = append(out, f.glyph(int(b)))
	}
	return out
}

func (f *engineFont) glyph(code int) glyphInfo {
	g := glyphInfo{code: code}
	if r, ok := f.toUnicode[code]; ok {
		g.r = r
	} else if r, ok := f.differences[code]; ok {
		g.r = r
	} else if !f.twoByte {
		g.r = rune(code) // Latin-1-ish fallback
	} else {
		g.r = 0xFFFD
	}
	if w, ok := f.widths[code]; ok {
		g.width = w
	} else {
		g.width = f.defaultWidth
	}
	g.isSpace = !f.twoByte && code == 32
	return g
}

// glyphNameToRune maps common Adobe glyph names. Unknown names fall
// back to uniXXXX parsing or single-letter identity.
func glyphNameToRune(name string) (rune, bool) {
	if r, ok := adobeGlyphs[name]; ok {
		return r, true
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v), true
		}
	}
	rs := []rune(name)
	if len(rs) == 1 {
		return rs[0], true
	}
	return 0, false
}

var adobeGlyphs = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "asciicircum": '^',
	"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|',
	"braceright": '}', "asciitilde": '~',
	"quoteleft": '‘', "quoteright": '’',
	"quotedblleft": '“', "quotedblright": '”',
	"endash": '–', "emdash": '—', "bullet": '•',
	"fi": 'ﬁ', "fl": 'ﬂ', "ellipsis": '…',
	"dagger": '†', "daggerdbl": '‡', "Euro": '€',
	"trademark": '™', "copyright": '©', "registered": '®',
	"degree": '°', "plusminus": '±', "mu": 'µ',
}
