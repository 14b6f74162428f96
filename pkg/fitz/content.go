package fitz

import (
	"fmt"
	"math"
)

// gstate is the graphics state the content interpreter maintains.
type gstate struct {
	ctm Matrix

	fillCS      *Colorspace
	strokeCS    *Colorspace
	fillColor   []float64
	strokeColor []float64

	lineWidth  float64
	lineCap    int
	lineJoin   int
	miterLimit float64

	fillAlpha   float64
	strokeAlpha float64

	font        *engineFont
	fontSize    float64
	charSpace   float64
	wordSpace   float64
	hscale      float64
	leading     float64
	rise        float64
	renderMode  int
}

func newGState(ctm Matrix) gstate {
	return gstate{
		ctm:         ctm,
		fillCS:      DeviceGray,
		strokeCS:    DeviceGray,
		fillColor:   []float64{0},
		strokeColor: []float64{0},
		lineWidth:   1,
		miterLimit:  10,
		fillAlpha:   1,
		strokeAlpha: 1,
		hscale:      1,
	}
}

// interpreter runs content streams against a device: an operand stack,
// a graphics state stack and a keyword switch.
type interpreter struct {
	doc    Document
	dev    Device
	cookie *Cookie

	gs    gstate
	stack []gstate

	path *Path

	// text object state
	inText bool
	tm     Matrix
	tlm    Matrix

	depth int
}

func newInterpreter(doc Document, dev Device, cookie *Cookie) *interpreter {
	return &interpreter{doc: doc, dev: dev, cookie: cookie}
}

func (ip *interpreter) run(content []byte, res pdfDict, ctm Matrix) error {
	ip.gs = newGState(ctm)
	ip.path = &Path{}
	return ip.exec(content, res)
}

// exec interprets one content stream with the given resources. Form
// XObjects re-enter here.
func (ip *interpreter) exec(content []byte, res pdfDict) error {
	if ip.depth > 16 {
		return fmt.Errorf("fitz: form XObject nesting too deep")
	}
	lex := newLexer(content, 0)
	var operands []pdfObject
	if ip.cookie != nil {
		ip.cookie.ProgressMax = len(content)
	}

	for {
		if ip.cookie != nil {
			if ip.cookie.Abort {
				return nil
			}
			ip.cookie.Progress = lex.pos
		}
		t, err := lex.next()
		if err != nil {
			// Content streams are best-effort; skip the bad byte.
			if ip.cookie != nil {
				ip.cookie.Errors++
			}
			lex.pos++
			continue
		}
		if t.typ == tokEOF {
			return nil
		}
		if t.typ != tokKeyword {
			p := &parser{lex: lex}
			obj, err := p.objectFromToken(t)
			if err != nil {
				if ip.cookie != nil {
					ip.cookie.Errors++
				}
				operands = operands[:0]
				continue
			}
			operands = append(operands, obj)
			continue
		}
		if t.val == "BI" {
			// Inline image: skip to EI. Inline image data is not
			// rendered, only stepped over.
			if !skipInlineImage(lex) {
				return nil
			}
			operands = operands[:0]
			continue
		}
		if err := ip.op(t.val, operands, res); err != nil {
			if ip.cookie != nil {
				ip.cookie.Errors++
			}
		}
		operands = operands[:0]
	}
}

// skipInlineImage advances past "BI ... ID <data> EI".
func skipInlineImage(lex *lexer) bool {
	id := indexBytes(lex.data, lex.pos, "ID")
	if id < 0 {
		return false
	}
	pos := id + 3 // "ID" plus one whitespace byte
	for pos+2 <= len(lex.data) {
		if lex.data[pos] == 'E' && lex.data[pos+1] == 'I' &&
			(pos+2 == len(lex.data) || isWhite(lex.data[pos+2]) || isDelim(lex.data[pos+2])) &&
			isWhite(lex.data[pos-1]) {
			lex.pos = pos + 2
			return true
		}
		pos++
	}
	return false
}

func nums(operands []pdfObject) []float64 {
	out := make([]float64, 0, len(operands))
	for _, o := range operands {
		if v, ok := objNumber(o); ok {
			out = append(out, v)
		}
	}
	return out
}

func (ip *interpreter) op(kw string, operands []pdfObject, res pdfDict) error {
	v := nums(operands)
	switch kw {
	// graphics state
	case "q":
		ip.stack = append(ip.stack, ip.gs)
	case "Q":
		if n := len(ip.stack); n > 0 {
			ip.gs = ip.stack[n-1]
			ip.stack = ip.stack[:n-1]
		}
	case "cm":
		if len(v) == 6 {
			m := Matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			ip.gs.ctm = m.Concat(ip.gs.ctm)
		}
	case "w":
		if len(v) == 1 {
			ip.gs.lineWidth = v[0]
		}
	case "J":
		if len(v) == 1 {
			ip.gs.lineCap = int(v[0])
		}
	case "j":
		if len(v) == 1 {
			ip.gs.lineJoin = int(v[0])
		}
	case "M":
		if len(v) == 1 {
			ip.gs.miterLimit = v[0]
		}
	case "gs":
		ip.extGState(operands, res)
	case "d", "ri", "i":
		// dash pattern, rendering intent, flatness: ignored

	// path construction
	case "m":
		if len(v) == 2 {
			ip.path.MoveTo(v[0], v[1])
		}
	case "l":
		if len(v) == 2 {
			ip.path.LineTo(v[0], v[1])
		}
	case "c":
		if len(v) == 6 {
			ip.path.CurveTo(v[0], v[1], v[2], v[3], v[4], v[5])
		}
	case "v":
		if len(v) == 4 {
			cur := ip.path.cur
			ip.path.CurveTo(cur.X, cur.Y, v[0], v[1], v[2], v[3])
		}
	case "y":
		if len(v) == 4 {
			ip.path.CurveTo(v[0], v[1], v[2], v[3], v[2], v[3])
		}
	case "h":
		ip.path.Close()
	case "re":
		if len(v) == 4 {
			ip.path.Rect(v[0], v[1], v[2], v[3])
		}

	// path painting
	case "f", "F":
		ip.fill(false)
	case "f*":
		ip.fill(true)
	case "B", "B*":
		ip.fill(kw == "B*")
		ip.stroke()
	case "b", "b*":
		ip.path.Close()
		ip.fill(kw == "b*")
		ip.stroke()
	case "S":
		ip.stroke()
	case "s":
		ip.path.Close()
		ip.stroke()
	case "n":
		ip.path = &Path{}
	case "W", "W*":
		// Clipping is not tracked; the paint op that follows resets
		// the path.

	// colour
	case "g":
		if len(v) == 1 {
			ip.gs.fillCS, ip.gs.fillColor = DeviceGray, v
		}
	case "G":
		if len(v) == 1 {
			ip.gs.strokeCS, ip.gs.strokeColor = DeviceGray, v
		}
	case "rg":
		if len(v) == 3 {
			ip.gs.fillCS, ip.gs.fillColor = DeviceRGB, v
		}
	case "RG":
		if len(v) == 3 {
			ip.gs.strokeCS, ip.gs.strokeColor = DeviceRGB, v
		}
	case "k":
		if len(v) == 4 {
			ip.gs.fillCS, ip.gs.fillColor = DeviceCMYK, v
		}
	case "K":
		if len(v) == 4 {
			ip.gs.strokeCS, ip.gs.strokeColor = DeviceCMYK, v
		}
	case "cs":
		ip.gs.fillCS = ip.namedColorspace(operands, res)
		ip.gs.fillColor = make([]float64, ip.gs.fillCS.N())
	case "CS":
		ip.gs.strokeCS = ip.namedColorspace(operands, res)
		ip.gs.strokeColor = make([]float64, ip.gs.strokeCS.N())
	case "sc", "scn":
		if len(v) > 0 {
			ip.gs.fillColor = v
		}
	case "SC", "SCN":
		if len(v) > 0 {
			ip.gs.strokeColor = v
		}

	// text
	case "BT":
		ip.inText = true
		ip.tm = Identity
		ip.tlm = Identity
	case "ET":
		ip.inText = false
	case "Tf":
		if len(operands) == 2 {
			if name, ok := operands[0].(pdfName); ok {
				ip.gs.font = ip.loadFont(res, string(name))
			}
			if sz, ok := objNumber(operands[1]); ok {
				ip.gs.fontSize = sz
			}
		}
	case "Td":
		if len(v) == 2 {
			ip.tlm = Translate(v[0], v[1]).Concat(ip.tlm)
			ip.tm = ip.tlm
		}
	case "TD":
		if len(v) == 2 {
			ip.gs.leading = -v[1]
			ip.tlm = Translate(v[0], v[1]).Concat(ip.tlm)
			ip.tm = ip.tlm
		}
	case "Tm":
		if len(v) == 6 {
			ip.tlm = Matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			ip.tm = ip.tlm
		}
	case "T*":
		ip.tlm = Translate(0, -ip.gs.leading).Concat(ip.tlm)
		ip.tm = ip.tlm
	case "TL":
		if len(v) == 1 {
			ip.gs.leading = v[0]
		}
	case "Tc":
		if len(v) == 1 {
			ip.gs.charSpace = v[0]
		}
	case "Tw":
		if len(v) == 1 {
			ip.gs.wordSpace = v[0]
		}
	case "Tz":
		if len(v) == 1 {
			ip.gs.hscale = v[0] / 100
		}
	case "Ts":
		if len(v) == 1 {
			ip.gs.rise = v[0]
		}
	case "Tr":
		if len(v) == 1 {
			ip.gs.renderMode = int(v[0])
		}
	case "Tj":
		if len(operands) == 1 {
			if s, ok := operands[0].(pdfString); ok {
				ip.showText(s.value)
			}
		}
	case "'":
		if len(operands) == 1 {
			ip.tlm = Translate(0, -ip.gs.leading).Concat(ip.tlm)
			ip.tm = ip.tlm
			if s, ok := operands[0].(pdfString); ok {
				ip.showText(s.value)
			}
		}
	case "\"":
		if len(operands) == 3 {
			if w, ok := objNumber(operands[0]); ok {
				ip.gs.wordSpace = w
			}
			if c, ok := objNumber(operands[1]); ok {
				ip.gs.charSpace = c
			}
			ip.tlm = Translate(0, -ip.gs.leading).Concat(ip.tlm)
			ip.tm = ip.tlm
			if s, ok := operands[2].(pdfString); ok {
				ip.showText(s.value)
			}
		}
	case "TJ":
		if len(operands) == 1 {
			if arr, ok := operands[0].(pdfArray); ok {
				for _, o := range arr {
					switch e := o.(type) {
					case pdfString:
						ip.showText(e.value)
					case pdfInt, pdfReal:
						adj, _ := objNumber(e)
						tx := -adj / 1000 * ip.gs.fontSize * ip.gs.hscale
						ip.tm = Translate(tx, 0).Concat(ip.tm)
					}
				}
			}
		}

	// XObjects
	case "Do":
		if len(operands) == 1 {
			if name, ok := operands[0].(pdfName); ok {
				return ip.doXObject(string(name), res)
			}
		}

	case "BMC", "BDC", "EMC", "MP", "DP", "BX", "EX", "sh", "d0", "d1":
		// marked content, shading and type 3 metrics: ignored
	default:
		return fmt.Errorf("fitz: unknown operator %q", kw)
	}
	return nil
}

func (ip *interpreter) fill(evenOdd bool) {
	if len(ip.path.elems) > 0 {
		ip.dev.FillPath(ip.path, evenOdd, ip.gs.ctm, ip.gs.fillCS, ip.gs.fillColor, ip.gs.fillAlpha)
	}
	ip.path = &Path{}
}

func (ip *interpreter) stroke() {
	if len(ip.path.elems) > 0 {
		st := &StrokeState{
			LineWidth:  ip.gs.lineWidth,
			LineCap:    ip.gs.lineCap,
			LineJoin:   ip.gs.lineJoin,
			MiterLimit: ip.gs.miterLimit,
		}
		ip.dev.StrokePath(ip.path, st, ip.gs.ctm, ip.gs.strokeCS, ip.gs.strokeColor, ip.gs.strokeAlpha)
	}
	ip.path = &Path{}
}

// extGState applies the /ExtGState parameters that matter here.
func (ip *interpreter) extGState(operands []pdfObject, res pdfDict) {
	if len(operands) != 1 {
		return
	}
	name, ok := operands[0].(pdfName)
	if !ok || res == nil {
		return
	}
	d := &Document{d: ip.doc.d}
	egs, ok := d.resolveShallow(res.get("ExtGState")).(pdfDict)
	if !ok {
		return
	}
	g, ok := d.resolveShallow(egs.get(string(name))).(pdfDict)
	if !ok {
		return
	}
	if ca, ok := g.getNumber("ca"); ok {
		ip.gs.fillAlpha = ca
	}
	if ca, ok := g.getNumber("CA"); ok {
		ip.gs.strokeAlpha = ca
	}
	if lw, ok := g.getNumber("LW"); ok {
		ip.gs.lineWidth = lw
	}
}

// namedColorspace maps a cs/CS operand to one of the fixed spaces.
// Anything more exotic degrades to DeviceRGB.
func (ip *interpreter) namedColorspace(operands []pdfObject, res pdfDict) *Colorspace {
	if len(operands) != 1 {
		return DeviceRGB
	}
	name, ok := operands[0].(pdfName)
	if !ok {
		return DeviceRGB
	}
	switch name {
	case "DeviceGray", "CalGray", "G":
		return DeviceGray
	case "DeviceRGB", "CalRGB", "Lab", "RGB":
		return DeviceRGB
	case "DeviceCMYK", "CMYK":
		return DeviceCMYK
	case "Pattern":
		return DeviceRGB
	}
	// Resource-defined space: look at its family.
	d := &Document{d: ip.doc.d}
	if csd, ok := d.resolveShallow(res.get("ColorSpace")).(pdfDict); ok {
		if arr, ok := d.resolveShallow(csd.get(string(name))).(pdfArray); ok && len(arr) > 0 {
			if fam, ok := arr[0].(pdfName); ok {
				switch fam {
				case "ICCBased":
					if len(arr) < 2 {
						return DeviceRGB
					}
					if stm, ok := d.resolveShallow(arr[1]).(*pdfStream); ok {
						if n, ok := stm.dict.getInt("N"); ok {
							switch n {
							case 1:
								return DeviceGray
							case 4:
								return DeviceCMYK
							}
						}
					}
				case "CalGray", "Separation":
					return DeviceGray
				case "DeviceCMYK":
					return DeviceCMYK
				}
			}
		}
	}
	return DeviceRGB
}

func (ip *interpreter) doXObject(name string, res pdfDict) error {
	if res == nil {
		return nil
	}
	d := &Document{d: ip.doc.d}
	xd, ok := d.resolveShallow(res.get("XObject")).(pdfDict)
	if !ok {
		return nil
	}
	stm, ok := d.resolveShallow(xd.get(name)).(*pdfStream)
	if !ok {
		return nil
	}
	sub, _ := stm.dict.getName("Subtype")
	switch sub {
	case "Image":
		img, err := d.loadImage(stm)
		if err != nil {
			return err
		}
		ip.dev.FillImage(img, ip.gs.ctm, ip.gs.fillAlpha)
		return nil
	case "Form":
		content, err := d.decodeStream(stm)
		if err != nil {
			return err
		}
		formRes := res
		if r, ok := d.resolveShallow(stm.dict.get("Resources")).(pdfDict); ok {
			formRes = r
		}
		saved := ip.gs
		if m, ok := stm.dict.getArray("Matrix"); ok && len(m) == 6 {
			var v [6]float64
			for i := range v {
				v[i], _ = objNumber(m[i])
			}
			fm := Matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			ip.gs.ctm = fm.Concat(ip.gs.ctm)
		}
		ip.depth++
		err = ip.exec(content, formRes)
		ip.depth--
		ip.gs = saved
		return err
	}
	return nil
}

// showText lays out one show-string and hands the glyph run to the
// device.
func (ip *interpreter) showText(raw []byte) {
	font := ip.gs.font
	if font == nil {
		font = ip.fallbackFont()
	}
	size := ip.gs.fontSize
	if size == 0 {
		size = 12
	}

	span := &TextSpan{
		Font:  &font.info,
		WMode: font.wmode,
	}
	trmBase := Scale(size*ip.gs.hscale, size).Concat(Translate(0, ip.gs.rise))

	for _, g := range font.decode(raw) {
		trm := trmBase.Concat(ip.tm).Concat(ip.gs.ctm)
		origin := trm.TransformPoint(Point{0, 0})

		w := g.width // in 1/1000 em
		adv := w / 1000

		// Glyph quad: em box scaled by the advance, ascender and
		// descender of the face.
		asc, desc := font.ascent, font.descent
		q := QuadFromRect(Rect{0, desc, adv, asc})
		span.Chars = append(span.Chars, TextChar{
			Rune:    g.r,
			Code:    g.code,
			Origin:  origin,
			Quad:    trm.TransformQuad(q),
			Advance: adv * size,
		})

		tx := (adv*size + ip.gs.charSpace) * ip.gs.hscale
		if g.isSpace {
			tx += ip.gs.wordSpace * ip.gs.hscale
		}
		ip.tm = Translate(tx, 0).Concat(ip.tm)
	}

	// Device-space size and baseline direction.
	dm := Scale(size, size).Concat(ip.tm).Concat(ip.gs.ctm)
	span.Size = dm.Expansion()
	o := ip.gs.ctm.TransformPoint(Point{0, 0})
	dx := ip.gs.ctm.TransformPoint(Point{1, 0})
	span.Dir = Point{dx.X - o.X, dx.Y - o.Y}
	n := span.Dir
	if l := n.X*n.X + n.Y*n.Y; l > 0 {
		inv := 1 / math.Sqrt(l)
		span.Dir = Point{n.X * inv, n.Y * inv}
	}

	if ip.gs.renderMode != 3 && len(span.Chars) > 0 {
		ip.dev.FillText(span, ip.gs.ctm, ip.gs.fillCS, ip.gs.fillColor, ip.gs.fillAlpha)
	}
}
