package fitz

import (
	"testing"
)

// TestNewLink tests manual link chain construction
func TestNewLink(t *testing.T) {
	a := NewLink(Rect{X0: 1, Y0: 2, X1: 3, Y1: 4}, "https://example.com/a")
	b := NewLink(Rect{X1: 10, Y1: 10}, "#page=2")
	a.Next = b

	if a.URI != "https://example.com/a" {
		t.Errorf("Unexpected URI %q", a.URI)
	}
	n := 0
	for l := a; l != nil; l = l.Next {
		n++
	}
	if n != 2 {
		t.Errorf("Expected chain of 2, got %d", n)
	}
}

// TestLinkString tests the debug form
func TestLinkString(t *testing.T) {
	l := NewLink(Rect{X0: 1, Y0: 2, X1: 3, Y1: 4}, "https://example.com/")
	got := l.String()
	want := `link [1 2 3 4] uri="https://example.com/"`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
