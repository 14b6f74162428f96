package fitz

import (
	"testing"
)

// TestParseToUnicodeCMapBfchar tests single-code mappings
func TestParseToUnicodeCMapBfchar(t *testing.T) {
	cmap := `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
2 beginbfchar
<01> <0048>
<02> <D835DC9C>
endbfchar
endcmap
end
end`
	got := parseToUnicodeCMap([]byte(cmap))
	if got[1] != 'H' {
		t.Errorf("Expected code 1 -> H, got %q", got[1])
	}
	if got[2] != 0x1D49C {
		t.Errorf("Expected code 2 -> U+1D49C via surrogates, got %U", got[2])
	}
}

// TestParseToUnicodeCMapBfrange tests range mappings
func TestParseToUnicodeCMapBfrange(t *testing.T) {
	cmap := `2 beginbfrange
<10> <12> <0041>
<20> <21> [<0058> <0059>]
endbfrange`
	got := parseToUnicodeCMap([]byte(cmap))
	for i, want := range []rune{'A', 'B', 'C'} {
		if got[0x10+i] != want {
			t.Errorf("Expected code %#x -> %q, got %q", 0x10+i, want, got[0x10+i])
		}
	}
	if got[0x20] != 'X' || got[0x21] != 'Y' {
		t.Errorf("Expected array form X, Y, got %q %q", got[0x20], got[0x21])
	}
}

// TestCleanFontName tests subset tag stripping
func TestCleanFontName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ABCDEF+Times-Roman", "Times-Roman"},
		{"Helvetica", "Helvetica"},
		{"AB+Weird", "AB+Weird"},
	}
	for _, tt := range tests {
		if got := cleanFontName(tt.input); got != tt.expected {
			t.Errorf("cleanFontName(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

// TestGlyphNameToRune tests Adobe glyph name mapping
func TestGlyphNameToRune(t *testing.T) {
	tests := []struct {
		name     string
		expected rune
		ok       bool
	}{
		{"space", ' ', true},
		{"comma", ',', true},
		{"zero", '0', true},
		{"uni0041", 'A', true},
		{"a", 'a', true},
		{"nonesuchglyph", 0, false},
	}
	for _, tt := range tests {
		r, ok := glyphNameToRune(tt.name)
		if ok != tt.ok || (ok && r != tt.expected) {
			t.Errorf("glyphNameToRune(%q): expected (%q, %v), got (%q, %v)",
				tt.name, tt.expected, tt.ok, r, ok)
		}
	}
}

// TestUTF16BEFirstRune tests BMP and surrogate decoding
func TestUTF16BEFirstRune(t *testing.T) {
	tests := []struct {
		input    []byte
		expected rune
	}{
		{[]byte{0x00, 0x41}, 'A'},
		{[]byte{0x4E, 0x2D}, '中'},
		{[]byte{0xD8, 0x35, 0xDC, 0x9C}, 0x1D49C},
		{[]byte{0x61}, 'a'},
		{nil, 0xFFFD},
	}
	for _, tt := range tests {
		if got := utf16beFirstRune(tt.input); got != tt.expected {
			t.Errorf("utf16beFirstRune(% x): expected %U, got %U", tt.input, tt.expected, got)
		}
	}
}

// TestFontDecode tests show-string decoding for simple and CID fonts
func TestFontDecode(t *testing.T) {
	simple := &engineFont{
		widths:       map[int]float64{'A': 600},
		defaultWidth: 500,
	}
	glyphs := simple.decode([]byte("A B"))
	if len(glyphs) != 3 {
		t.Fatalf("Expected 3 glyphs, got %d", len(glyphs))
	}
	if glyphs[0].r != 'A' || glyphs[0].width != 600 {
		t.Errorf("Expected (A, 600), got (%q, %g)", glyphs[0].r, glyphs[0].width)
	}
	if !glyphs[1].isSpace {
		t.Error("Expected space glyph to be flagged")
	}
	if glyphs[2].width != 500 {
		t.Errorf("Expected default width 500, got %g", glyphs[2].width)
	}

	cid := &engineFont{
		twoByte:      true,
		toUnicode:    map[int]rune{0x0102: '中'},
		widths:       map[int]float64{0x0102: 1000},
		defaultWidth: 1000,
	}
	glyphs = cid.decode([]byte{0x01, 0x02, 0x00, 0x99})
	if len(glyphs) != 2 {
		t.Fatalf("Expected 2 glyphs, got %d", len(glyphs))
	}
	if glyphs[0].r != '中' {
		t.Errorf("Expected CID glyph 中, got %q", glyphs[0].r)
	}
	if glyphs[1].r != 0xFFFD {
		t.Errorf("Expected unmapped CID to decode to U+FFFD, got %U", glyphs[1].r)
	}
}
