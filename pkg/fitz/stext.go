package fitz

import (
	"math"
	"strings"
)

// Structured text block types.
const (
	StextBlockText  = 0
	StextBlockImage = 1
)

// StextOptions selects structured text extraction behaviour. No flags
// are defined yet; the zero value is the default.
type StextOptions struct {
	Flags int
}

// StextChar is one character of structured text, with its position in
// device space.
type StextChar struct {
	Rune   rune
	Origin Point
	Quad   Quad
	Size   float64
	Color  uint32 // packed 0xRRGGBB
	Font   FontInfo
}

// StextLine is a sequence of characters sharing one baseline.
type StextLine struct {
	WMode int
	Dir   Point
	BBox  Rect
	chars []*StextChar
}

// Chars returns the line's characters in content order.
func (l *StextLine) Chars() []*StextChar { return l.chars }

// Text returns the line's characters as a string.
func (l *StextLine) Text() string {
	var sb strings.Builder
	for _, c := range l.chars {
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}

// StextBlock groups lines belonging together, or marks the place of an
// image.
type StextBlock struct {
	Type  int
	BBox  Rect
	lines []*StextLine
}

// Lines returns the block's lines. Image blocks have none.
func (b *StextBlock) Lines() []*StextLine { return b.lines }

// StextPage is the structured text of one page.
type StextPage struct {
	mediabox Rect
	blocks   []*StextBlock
}

// Blocks returns the page's blocks in content order.
func (p *StextPage) Blocks() []*StextBlock { return p.blocks }

// Text returns the page's plain text, lines separated by newlines and
// blocks by blank lines.
func (p *StextPage) Text() string {
	var sb strings.Builder
	for i, b := range p.blocks {
		if b.Type != StextBlockText {
			continue
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, l := range b.lines {
			sb.WriteString(l.Text())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// NewStextPageForBound returns an empty structured text page covering
// the given media box, to be filled through a StextDevice.
func NewStextPageForBound(mediabox Rect) *StextPage {
	return &StextPage{mediabox: mediabox}
}

// NewStextPage extracts the structured text of a page.
func NewStextPage(page *Page, opts StextOptions) (*StextPage, error) {
	tp := &StextPage{mediabox: page.Bound()}
	dev := StextDevice(tp, opts)
	if err := page.Run(dev, Identity, nil); err != nil {
		return nil, err
	}
	return tp, dev.Close()
}

// NewStextPageFromDocument extracts the structured text of page number
// (0-based) of the document.
func NewStextPageFromDocument(doc Document, number int, opts StextOptions) (*StextPage, error) {
	page, err := doc.LoadPage(number)
	if err != nil {
		return nil, err
	}
	return NewStextPage(page, opts)
}

// stextDevice accumulates spans into the page's block/line structure.
type stextDevice struct {
	page *StextPage
	opts StextOptions

	block *StextBlock
	line  *StextLine
}

// StextDevice returns a device that populates tp as a page is run
// through it.
func StextDevice(tp *StextPage, opts StextOptions) Device {
	return &stextDevice{page: tp, opts: opts}
}

func (sd *stextDevice) FillPath(*Path, bool, Matrix, *Colorspace, []float64, float64) {}

func (sd *stextDevice) StrokePath(*Path, *StrokeState, Matrix, *Colorspace, []float64, float64) {}

func (sd *stextDevice) FillImage(img *imageData, ctm Matrix, alpha float64) {
	bbox := ctm.TransformRect(Rect{0, 0, 1, 1})
	sd.page.blocks = append(sd.page.blocks, &StextBlock{Type: StextBlockImage, BBox: bbox})
	sd.block = nil
	sd.line = nil
}

func (sd *stextDevice) FillText(span *TextSpan, ctm Matrix, cs *Colorspace, col []float64, alpha float64) {
	r, g, b := cs.toRGB(col)
	color := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	for _, c := range span.Chars {
		sc := &StextChar{
			Rune:   c.Rune,
			Origin: c.Origin,
			Quad:   c.Quad,
			Size:   span.Size,
			Color:  color,
		}
		if span.Font != nil {
			sc.Font = *span.Font
		}
		sd.place(sc, span)
	}
}

// place appends a char, starting a new line when the baseline moves
// and a new block when the jump is bigger than a line's worth.
func (sd *stextDevice) place(c *StextChar, span *TextSpan) {
	size := c.Size
	if size <= 0 {
		size = 1
	}
	sameLine := sd.line != nil && sd.line.WMode == span.WMode &&
		math.Abs(sd.line.chars[len(sd.line.chars)-1].Origin.Y-c.Origin.Y) < size*0.3
	if !sameLine {
		gap := math.Inf(1)
		if sd.block != nil && len(sd.block.lines) > 0 {
			last := sd.block.lines[len(sd.block.lines)-1]
			gap = math.Abs(c.Origin.Y - last.chars[len(last.chars)-1].Origin.Y)
		}
		if sd.block == nil || gap > size*2.2 {
			sd.block = &StextBlock{Type: StextBlockText, BBox: c.Quad.Bounds()}
			sd.page.blocks = append(sd.page.blocks, sd.block)
		}
		sd.line = &StextLine{WMode: span.WMode, Dir: span.Dir, BBox: c.Quad.Bounds()}
		sd.block.lines = append(sd.block.lines, sd.line)
	}
	sd.line.chars = append(sd.line.chars, c)
	sd.line.BBox = sd.line.BBox.Union(c.Quad.Bounds())
	sd.block.BBox = sd.block.BBox.Union(c.Quad.Bounds())
}

func (sd *stextDevice) Close() error { return nil }
