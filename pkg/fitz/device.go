package fitz

import "github.com/golang/freetype/truetype"

// Cookie carries progress out of a running page and an abort request
// into it.
type Cookie struct {
	Abort       bool
	Progress    int
	ProgressMax int
	Errors      int
}

// pathElemOp is a path construction operator.
type pathElemOp int

const (
	pathMoveTo pathElemOp = iota
	pathLineTo
	pathCurveTo
	pathClose
)

type pathElem struct {
	op pathElemOp
	p  [3]Point // moveto/lineto use p[0]; curveto uses all three
}

// Path is a path in user space, to be transformed by the ctm handed to
// the device alongside it.
type Path struct {
	elems []pathElem
	cur   Point
	start Point
}

func (p *Path) MoveTo(x, y float64) {
	p.elems = append(p.elems, pathElem{op: pathMoveTo, p: [3]Point{{x, y}}})
	p.cur = Point{x, y}
	p.start = p.cur
}

func (p *Path) LineTo(x, y float64) {
	p.elems = append(p.elems, pathElem{op: pathLineTo, p: [3]Point{{x, y}}})
	p.cur = Point{x, y}
}

func (p *Path) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	p.elems = append(p.elems, pathElem{
		op: pathCurveTo,
		p:  [3]Point{{x1, y1}, {x2, y2}, {x3, y3}},
	})
	p.cur = Point{x3, y3}
}

func (p *Path) Close() {
	p.elems = append(p.elems, pathElem{op: pathClose})
	p.cur = p.start
}

func (p *Path) Rect(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Bounds returns the path's control-point bounding box under m.
func (p *Path) Bounds(m Matrix) Rect {
	var r Rect
	first := true
	add := func(pt Point) {
		q := m.TransformPoint(pt)
		if first {
			r = Rect{q.X, q.Y, q.X, q.Y}
			first = false
			return
		}
		if q.X < r.X0 {
			r.X0 = q.X
		}
		if q.Y < r.Y0 {
			r.Y0 = q.Y
		}
		if q.X > r.X1 {
			r.X1 = q.X
		}
		if q.Y > r.Y1 {
			r.Y1 = q.Y
		}
	}
	for _, e := range p.elems {
		switch e.op {
		case pathMoveTo, pathLineTo:
			add(e.p[0])
		case pathCurveTo:
			add(e.p[0])
			add(e.p[1])
			add(e.p[2])
		}
	}
	return r
}

// StrokeState carries the stroke parameters of the graphics state.
type StrokeState struct {
	LineWidth  float64
	LineCap    int
	LineJoin   int
	MiterLimit float64
}

// TextChar is one placed glyph of a text span.
type TextChar struct {
	Rune    rune
	Code    int
	Origin  Point  // baseline origin in device space
	Quad    Quad   // glyph bounding quad in device space
	Advance float64
}

// TextSpan is a run of glyphs sharing a font and size.
type TextSpan struct {
	Font  *FontInfo
	Size  float64 // in device space
	WMode int
	Dir   Point // baseline direction, unit-ish vector
	Chars []TextChar
}

// FontInfo describes the font of a text span the way the structured
// text API exposes it.
type FontInfo struct {
	Name       string
	IsMono     bool
	IsBold     bool
	IsItalic   bool
	IsSerif    bool
	Substitute bool // glyphs come from a replacement face
	FakeBold   bool
	FakeItalic bool

	ttf *truetype.Font // rasterisation face, nil when substituted late
}

// Device consumes page content. DrawDevice rasterises into a pixmap;
// StextDevice collects structured text.
type Device interface {
	FillPath(path *Path, evenOdd bool, ctm Matrix, cs *Colorspace, color []float64, alpha float64)
	StrokePath(path *Path, stroke *StrokeState, ctm Matrix, cs *Colorspace, color []float64, alpha float64)
	FillText(span *TextSpan, ctm Matrix, cs *Colorspace, color []float64, alpha float64)
	FillImage(img *imageData, ctm Matrix, alpha float64)
	Close() error
}
