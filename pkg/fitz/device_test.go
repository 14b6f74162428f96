package fitz

import (
	"testing"
)

// TestPathBounds tests path construction and transformed bounds
func TestPathBounds(t *testing.T) {
	p := &Path{}
	p.MoveTo(10, 20)
	p.LineTo(30, 20)
	p.LineTo(30, 50)
	p.Close()

	b := p.Bounds(Identity)
	want := Rect{X0: 10, Y0: 20, X1: 30, Y1: 50}
	if b != want {
		t.Errorf("Expected bounds %v, got %v", want, b)
	}

	b = p.Bounds(Scale(2, 2))
	want = Rect{X0: 20, Y0: 40, X1: 60, Y1: 100}
	if b != want {
		t.Errorf("Expected scaled bounds %v, got %v", want, b)
	}
}

// TestPathRect tests the rectangle convenience op
func TestPathRect(t *testing.T) {
	p := &Path{}
	p.Rect(5, 6, 10, 20)
	b := p.Bounds(Identity)
	want := Rect{X0: 5, Y0: 6, X1: 15, Y1: 26}
	if b != want {
		t.Errorf("Expected bounds %v, got %v", want, b)
	}
}
