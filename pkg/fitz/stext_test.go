package fitz

import (
	"testing"
)

func stextSpan(text string, x, y, size float64) *TextSpan {
	span := &TextSpan{
		Font: &FontInfo{Name: "Helvetica"},
		Size: size,
		Dir:  Point{X: 1},
	}
	for i, r := range text {
		ox := x + float64(i)*size*0.5
		span.Chars = append(span.Chars, TextChar{
			Rune:   r,
			Origin: Point{X: ox, Y: y},
			Quad: QuadFromRect(Rect{
				X0: ox, Y0: y - size*0.8,
				X1: ox + size*0.5, Y1: y + size*0.2,
			}),
			Advance: size * 0.5,
		})
	}
	return span
}

// TestStextLineGrouping tests that spans on one baseline join a line
func TestStextLineGrouping(t *testing.T) {
	tp := NewStextPageForBound(Rect{X1: 612, Y1: 792})
	dev := StextDevice(tp, StextOptions{})

	dev.FillText(stextSpan("Hello, ", 72, 100, 12), Identity, DeviceGray, []float64{0}, 1)
	dev.FillText(stextSpan("world", 120, 100, 12), Identity, DeviceGray, []float64{0}, 1)
	dev.Close()

	blocks := tp.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	lines := blocks[0].Lines()
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Text() != "Hello, world" {
		t.Errorf("Expected %q, got %q", "Hello, world", lines[0].Text())
	}
}

// TestStextLineBreak tests that a baseline move starts a new line
func TestStextLineBreak(t *testing.T) {
	tp := NewStextPageForBound(Rect{X1: 612, Y1: 792})
	dev := StextDevice(tp, StextOptions{})

	dev.FillText(stextSpan("first", 72, 100, 12), Identity, DeviceGray, []float64{0}, 1)
	dev.FillText(stextSpan("second", 72, 114, 12), Identity, DeviceGray, []float64{0}, 1)
	dev.Close()

	blocks := tp.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	lines := blocks[0].Lines()
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if tp.Text() != "first\nsecond\n" {
		t.Errorf("Expected %q, got %q", "first\nsecond\n", tp.Text())
	}
}

// TestStextBlockBreak tests that a large jump starts a new block
func TestStextBlockBreak(t *testing.T) {
	tp := NewStextPageForBound(Rect{X1: 612, Y1: 792})
	dev := StextDevice(tp, StextOptions{})

	dev.FillText(stextSpan("top", 72, 100, 12), Identity, DeviceGray, []float64{0}, 1)
	dev.FillText(stextSpan("bottom", 72, 400, 12), Identity, DeviceGray, []float64{0}, 1)
	dev.Close()

	if n := len(tp.Blocks()); n != 2 {
		t.Fatalf("Expected 2 blocks, got %d", n)
	}
	if tp.Text() != "top\n\nbottom\n" {
		t.Errorf("Expected blank line between blocks, got %q", tp.Text())
	}
}

// TestStextImageBlock tests that images produce image blocks
func TestStextImageBlock(t *testing.T) {
	tp := NewStextPageForBound(Rect{X1: 612, Y1: 792})
	dev := StextDevice(tp, StextOptions{})

	ctm := Scale(100, 80).Concat(Translate(50, 60))
	dev.FillImage(&imageData{width: 1, height: 1}, ctm, 1)
	dev.Close()

	blocks := tp.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Type != StextBlockImage {
		t.Errorf("Expected image block, got type %d", blocks[0].Type)
	}
	want := Rect{X0: 50, Y0: 60, X1: 150, Y1: 140}
	if blocks[0].BBox != want {
		t.Errorf("Expected bbox %v, got %v", want, blocks[0].BBox)
	}
	if tp.Text() != "" {
		t.Errorf("Expected no text from image block, got %q", tp.Text())
	}
}

// TestStextColor tests colour packing on characters
func TestStextColor(t *testing.T) {
	tp := NewStextPageForBound(Rect{X1: 612, Y1: 792})
	dev := StextDevice(tp, StextOptions{})

	dev.FillText(stextSpan("r", 72, 100, 12), Identity, DeviceRGB, []float64{1, 0, 0}, 1)
	dev.Close()

	c := tp.Blocks()[0].Lines()[0].Chars()[0]
	if c.Color != 0xFF0000 {
		t.Errorf("Expected packed red 0xFF0000, got %#06x", c.Color)
	}
	if c.Font.Name != "Helvetica" {
		t.Errorf("Expected font name to carry through, got %q", c.Font.Name)
	}
}
