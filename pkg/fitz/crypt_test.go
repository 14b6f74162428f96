package fitz

import (
	"bytes"
	"testing"
)

// TestPadPassword tests the 32-byte password padding
func TestPadPassword(t *testing.T) {
	p := padPassword("")
	if len(p) != 32 {
		t.Fatalf("Expected 32 bytes, got %d", len(p))
	}
	if !bytes.Equal(p, passwordPad) {
		t.Error("Empty password should be the bare pad")
	}

	p = padPassword("abc")
	if string(p[:3]) != "abc" {
		t.Errorf("Expected password prefix, got % x", p[:3])
	}
	if !bytes.Equal(p[3:], passwordPad[:29]) {
		t.Error("Expected pad to fill the remaining 29 bytes")
	}

	long := padPassword("0123456789012345678901234567890123456789")
	if len(long) != 32 || string(long) != "01234567890123456789012345678901" {
		t.Errorf("Expected truncation to 32 bytes, got %q", long)
	}
}

// TestNewCryptHandler tests /Encrypt dictionary interpretation
func TestNewCryptHandler(t *testing.T) {
	enc := pdfDict{
		"Filter": pdfName("Standard"),
		"V":      pdfInt(2),
		"R":      pdfInt(3),
		"Length": pdfInt(128),
		"P":      pdfInt(-4),
		"O":      pdfString{value: make([]byte, 32)},
		"U":      pdfString{value: make([]byte, 32)},
	}
	h, err := newCryptHandler(enc, []byte("id"))
	if err != nil {
		t.Fatalf("newCryptHandler failed: %v", err)
	}
	if h.method != cryptRC4 || h.keyBits != 128 {
		t.Errorf("Expected 128-bit RC4, got method %d keyBits %d", h.method, h.keyBits)
	}
	if h.description() != "Standard V2 R3 128-bit RC4" {
		t.Errorf("Unexpected description %q", h.description())
	}

	enc["Filter"] = pdfName("Custom")
	if _, err := newCryptHandler(enc, nil); err == nil {
		t.Error("Expected error for non-standard handler")
	}
}

// TestCryptHandlerAESV4 tests the V4 crypt filter downgrade to RC4
func TestCryptHandlerAESV4(t *testing.T) {
	enc := pdfDict{
		"Filter": pdfName("Standard"),
		"V":      pdfInt(4),
		"R":      pdfInt(4),
	}
	h, err := newCryptHandler(enc, nil)
	if err != nil {
		t.Fatalf("newCryptHandler failed: %v", err)
	}
	if h.method != cryptAESV2 {
		t.Errorf("Expected AES for plain V4, got method %d", h.method)
	}

	enc["CF"] = pdfDict{
		"StdCF": pdfDict{"CFM": pdfName("V2")},
	}
	h, err = newCryptHandler(enc, nil)
	if err != nil {
		t.Fatalf("newCryptHandler failed: %v", err)
	}
	if h.method != cryptRC4 {
		t.Errorf("Expected RC4 via /CFM V2, got method %d", h.method)
	}
}

// TestObjectKeyLength tests per-object key derivation lengths
func TestObjectKeyLength(t *testing.T) {
	h := &cryptHandler{method: cryptRC4, key: make([]byte, 5)} // 40-bit
	if n := len(h.objectKey(1, 0)); n != 10 {
		t.Errorf("Expected 10-byte object key for 40-bit RC4, got %d", n)
	}

	h = &cryptHandler{method: cryptRC4, key: make([]byte, 16)} // 128-bit
	if n := len(h.objectKey(1, 0)); n != 16 {
		t.Errorf("Expected 16-byte object key for 128-bit RC4, got %d", n)
	}

	// Different objects must get different keys.
	a := h.objectKey(1, 0)
	b := h.objectKey(2, 0)
	if bytes.Equal(a, b) {
		t.Error("Expected object keys to differ per object number")
	}

	h = &cryptHandler{method: cryptAESV3, key: make([]byte, 32)}
	if n := len(h.objectKey(1, 0)); n != 32 {
		t.Errorf("Expected the file key for AES-256, got %d bytes", n)
	}
}
