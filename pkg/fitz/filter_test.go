package fitz

import (
	"bytes"
	"compress/zlib"
	"testing"
)

// TestFlateDecode tests zlib-wrapped deflate decoding
func TestFlateDecode(t *testing.T) {
	plain := []byte("some stream content, long enough to compress: aaaaaaaaaaaaaaaa")
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(plain)
	zw.Close()

	got, err := flateDecode(buf.Bytes())
	if err != nil {
		t.Fatalf("flateDecode failed: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("Expected %q, got %q", plain, got)
	}

	if _, err := flateDecode([]byte("not zlib at all")); err == nil {
		t.Error("Expected error for garbage input")
	}
}

// TestASCIIHexDecode tests hex filter decoding
func TestASCIIHexDecode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"48656C6C6F>", "Hello"},
		{"48 65 6c 6c 6f>", "Hello"},
		{"4865A>", "He\xa0"},
		{">", ""},
	}
	for _, tt := range tests {
		got, err := asciiHexDecode([]byte(tt.input))
		if err != nil {
			t.Errorf("asciiHexDecode(%q) failed: %v", tt.input, err)
			continue
		}
		if string(got) != tt.expected {
			t.Errorf("asciiHexDecode(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}

	if _, err := asciiHexDecode([]byte("4z>")); err == nil {
		t.Error("Expected error for bad hex digit")
	}
}

// TestASCII85Decode tests base-85 filter decoding
func TestASCII85Decode(t *testing.T) {
	got, err := ascii85Decode([]byte("87cURD_*#TDfTZ)~>"))
	if err != nil {
		t.Fatalf("ascii85Decode failed: %v", err)
	}
	if string(got) != "Hello, world" {
		t.Errorf("Expected %q, got %q", "Hello, world", got)
	}
}

// TestRunLengthDecode tests run-length filter decoding
func TestRunLengthDecode(t *testing.T) {
	// 2+1 literal bytes "abc", then a run of 4 x 'z', then EOD.
	input := []byte{2, 'a', 'b', 'c', 253, 'z', 128}
	got, err := runLengthDecode(input)
	if err != nil {
		t.Fatalf("runLengthDecode failed: %v", err)
	}
	if string(got) != "abczzzz" {
		t.Errorf("Expected %q, got %q", "abczzzz", got)
	}

	if _, err := runLengthDecode([]byte{5, 'a'}); err == nil {
		t.Error("Expected error for truncated literal")
	}
}

// TestPNGPredictor tests undoing PNG row filters
func TestPNGPredictor(t *testing.T) {
	parm := pdfDict{
		"Predictor": pdfInt(12),
		"Columns":   pdfInt(3),
	}
	// Row 1: Up filter over an implicit zero row; row 2: Up again.
	data := []byte{
		2, 1, 2, 3,
		2, 1, 1, 1,
	}
	got, err := applyPredictor(nil, data, parm)
	if err != nil {
		t.Fatalf("applyPredictor failed: %v", err)
	}
	expected := []byte{1, 2, 3, 2, 3, 4}
	if !bytes.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

// TestPNGPredictorSub tests the Sub row filter
func TestPNGPredictorSub(t *testing.T) {
	parm := pdfDict{
		"Predictor": pdfInt(12),
		"Columns":   pdfInt(4),
	}
	data := []byte{1, 10, 1, 1, 1}
	got, err := applyPredictor(nil, data, parm)
	if err != nil {
		t.Fatalf("applyPredictor failed: %v", err)
	}
	expected := []byte{10, 11, 12, 13}
	if !bytes.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

// TestTIFFPredictor tests the horizontal difference predictor
func TestTIFFPredictor(t *testing.T) {
	parm := pdfDict{
		"Predictor": pdfInt(2),
		"Columns":   pdfInt(4),
	}
	data := []byte{10, 1, 1, 1}
	got, err := applyPredictor(nil, data, parm)
	if err != nil {
		t.Fatalf("applyPredictor failed: %v", err)
	}
	expected := []byte{10, 11, 12, 13}
	if !bytes.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

// TestPredictorNone tests that predictor 1 passes data through
func TestPredictorNone(t *testing.T) {
	data := []byte{1, 2, 3}
	got, err := applyPredictor(nil, data, pdfDict{"Predictor": pdfInt(1)})
	if err != nil {
		t.Fatalf("applyPredictor failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Expected pass-through, got %v", got)
	}
}

// TestPaeth tests the Paeth predictor function
func TestPaeth(t *testing.T) {
	tests := []struct {
		a, b, c  byte
		expected byte
	}{
		{0, 0, 0, 0},
		{10, 20, 10, 20},
		{20, 10, 10, 20},
		{100, 100, 100, 100},
	}
	for _, tt := range tests {
		if got := paeth(tt.a, tt.b, tt.c); got != tt.expected {
			t.Errorf("paeth(%d,%d,%d): expected %d, got %d", tt.a, tt.b, tt.c, tt.expected, got)
		}
	}
}

// lzwLiteralStream packs each byte as a single LZW code. The decoder
// grows its table by one entry per code, so the code width crosses the
// 9-to-10-bit boundary once the input is long enough; early selects
// the one-entry-early width change that LZWDecode streams default to.
func lzwLiteralStream(data []byte, early int) []byte {
	var out []byte
	var acc, nbits uint
	width := uint(9)
	emit := func(code uint) {
		acc = acc<<width | code
		nbits += width
		for nbits >= 8 {
			out = append(out, byte(acc>>(nbits-8)))
			nbits -= 8
		}
	}
	emit(256) // clear table
	hi := 257
	for _, b := range data {
		emit(uint(b))
		hi++
		if hi+early >= 1<<width {
			width++
		}
	}
	emit(257) // end of data
	if nbits > 0 {
		out = append(out, byte(acc<<(8-nbits)))
	}
	return out
}

// TestLZWDecodeEarlyChange tests that a default-EarlyChange stream long
// enough to cross the 511-entry table boundary decodes exactly
func TestLZWDecodeEarlyChange(t *testing.T) {
	plain := make([]byte, 300)
	for i := range plain {
		plain[i] = byte(i % 251)
	}
	got, err := lzwDecode(lzwLiteralStream(plain, 1), nil)
	if err != nil {
		t.Fatalf("lzwDecode failed: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("Expected %d bytes matching input, got %d bytes (first mismatch at %d)",
			len(plain), len(got), firstMismatch(plain, got))
	}
}

// TestLZWDecodeNoEarlyChange tests the EarlyChange=0 code-width schedule
func TestLZWDecodeNoEarlyChange(t *testing.T) {
	plain := make([]byte, 300)
	for i := range plain {
		plain[i] = byte(255 - i%251)
	}
	parm := pdfDict{"EarlyChange": pdfInt(0)}
	got, err := lzwDecode(lzwLiteralStream(plain, 0), parm)
	if err != nil {
		t.Fatalf("lzwDecode failed: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("Expected %d bytes matching input, got %d bytes (first mismatch at %d)",
			len(plain), len(got), firstMismatch(plain, got))
	}
}

func firstMismatch(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
