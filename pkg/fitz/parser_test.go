package fitz

import (
	"testing"
)

// TestParseScalars tests parsing scalar objects
func TestParseScalars(t *testing.T) {
	tests := []struct {
		input string
		check func(pdfObject) bool
	}{
		{"null", func(o pdfObject) bool { _, ok := o.(pdfNull); return ok }},
		{"true", func(o pdfObject) bool { b, ok := o.(pdfBool); return ok && bool(b) }},
		{"false", func(o pdfObject) bool { b, ok := o.(pdfBool); return ok && !bool(b) }},
		{"42", func(o pdfObject) bool { i, ok := o.(pdfInt); return ok && i == 42 }},
		{"2.5", func(o pdfObject) bool { r, ok := o.(pdfReal); return ok && r == 2.5 }},
		{"/Name", func(o pdfObject) bool { n, ok := o.(pdfName); return ok && n == "Name" }},
		{"(str)", func(o pdfObject) bool { s, ok := o.(pdfString); return ok && string(s.value) == "str" }},
	}
	for _, tt := range tests {
		obj, err := newParser([]byte(tt.input), 0, nil).parseObject()
		if err != nil {
			t.Errorf("parseObject(%q) failed: %v", tt.input, err)
			continue
		}
		if !tt.check(obj) {
			t.Errorf("parseObject(%q): unexpected result %v", tt.input, obj)
		}
	}
}

// TestParseReference tests disambiguating integers from references
func TestParseReference(t *testing.T) {
	obj, err := newParser([]byte("12 0 R"), 0, nil).parseObject()
	if err != nil {
		t.Fatalf("parseObject failed: %v", err)
	}
	ref, ok := obj.(pdfRef)
	if !ok {
		t.Fatalf("Expected pdfRef, got %T", obj)
	}
	if ref.num != 12 || ref.gen != 0 {
		t.Errorf("Expected 12 0 R, got %d %d R", ref.num, ref.gen)
	}

	// Three bare integers are not a reference.
	p := newParser([]byte("1 2 3"), 0, nil)
	for i := int64(1); i <= 3; i++ {
		obj, err := p.parseObject()
		if err != nil {
			t.Fatalf("parseObject failed: %v", err)
		}
		n, ok := obj.(pdfInt)
		if !ok || int64(n) != i {
			t.Errorf("Expected pdfInt %d, got %v", i, obj)
		}
	}
}

// TestParseArray tests parsing nested arrays
func TestParseArray(t *testing.T) {
	obj, err := newParser([]byte("[1 (two) /Three [4 5] 6 0 R]"), 0, nil).parseObject()
	if err != nil {
		t.Fatalf("parseObject failed: %v", err)
	}
	arr, ok := obj.(pdfArray)
	if !ok {
		t.Fatalf("Expected pdfArray, got %T", obj)
	}
	if len(arr) != 5 {
		t.Fatalf("Expected 5 elements, got %d", len(arr))
	}
	if inner, ok := arr[3].(pdfArray); !ok || len(inner) != 2 {
		t.Errorf("Expected nested array of 2, got %v", arr[3])
	}
	if ref, ok := arr[4].(pdfRef); !ok || ref.num != 6 {
		t.Errorf("Expected 6 0 R, got %v", arr[4])
	}
}

// TestParseDict tests parsing dictionaries
func TestParseDict(t *testing.T) {
	input := "<< /Type /Page /MediaBox [0 0 612 792] /Parent 3 0 R /Rotate 90 >>"
	obj, err := newParser([]byte(input), 0, nil).parseObject()
	if err != nil {
		t.Fatalf("parseObject failed: %v", err)
	}
	dict, ok := obj.(pdfDict)
	if !ok {
		t.Fatalf("Expected pdfDict, got %T", obj)
	}
	if name, _ := dict.getName("Type"); name != "Page" {
		t.Errorf("Expected /Type /Page, got %q", name)
	}
	if box, ok := dict.getArray("MediaBox"); !ok || len(box) != 4 {
		t.Errorf("Expected 4-element MediaBox, got %v", box)
	}
	if rot, _ := dict.getInt("Rotate"); rot != 90 {
		t.Errorf("Expected Rotate 90, got %d", rot)
	}
	if _, ok := dict.get("Parent").(pdfRef); !ok {
		t.Errorf("Expected Parent to be a reference, got %v", dict.get("Parent"))
	}
}

// TestParseStream tests parsing a stream with a direct Length
func TestParseStream(t *testing.T) {
	input := "<< /Length 5 >>\nstream\nhello\nendstream"
	obj, err := newParser([]byte(input), 0, nil).parseObject()
	if err != nil {
		t.Fatalf("parseObject failed: %v", err)
	}
	stm, ok := obj.(*pdfStream)
	if !ok {
		t.Fatalf("Expected *pdfStream, got %T", obj)
	}
	if string(stm.raw) != "hello" {
		t.Errorf("Expected payload %q, got %q", "hello", stm.raw)
	}
}

// TestParseStreamBadLength tests rescanning for endstream when the
// declared Length is wrong
func TestParseStreamBadLength(t *testing.T) {
	input := "<< /Length 99 >>\nstream\nhello\nendstream"
	obj, err := newParser([]byte(input), 0, nil).parseObject()
	if err != nil {
		t.Fatalf("parseObject failed: %v", err)
	}
	stm, ok := obj.(*pdfStream)
	if !ok {
		t.Fatalf("Expected *pdfStream, got %T", obj)
	}
	if string(stm.raw) != "hello" {
		t.Errorf("Expected payload %q, got %q", "hello", stm.raw)
	}
}

// TestParseIndirect tests parsing "n g obj ... endobj"
func TestParseIndirect(t *testing.T) {
	num, gen, obj, err := newParser([]byte("7 0 obj\n<< /K (v) >>\nendobj"), 0, nil).parseIndirect()
	if err != nil {
		t.Fatalf("parseIndirect failed: %v", err)
	}
	if num != 7 || gen != 0 {
		t.Errorf("Expected 7 0 obj, got %d %d obj", num, gen)
	}
	if _, ok := obj.(pdfDict); !ok {
		t.Errorf("Expected pdfDict body, got %T", obj)
	}
}

// TestParseHexString tests that hex-written strings keep their written
// form for display
func TestParseHexString(t *testing.T) {
	obj, err := newParser([]byte("<48656C6C6F>"), 0, nil).parseObject()
	if err != nil {
		t.Fatalf("parseObject failed: %v", err)
	}
	s, ok := obj.(pdfString)
	if !ok {
		t.Fatalf("Expected pdfString, got %T", obj)
	}
	if string(s.value) != "Hello" {
		t.Errorf("Expected payload %q, got %q", "Hello", s.value)
	}
	if !s.hex {
		t.Error("Expected the hex form to be recorded")
	}
	if got := s.String(); got != "<48656C6C6F>" {
		t.Errorf("Expected <48656C6C6F>, got %s", got)
	}

	obj, err = newParser([]byte("(Hello)"), 0, nil).parseObject()
	if err != nil {
		t.Fatalf("parseObject failed: %v", err)
	}
	if s := obj.(pdfString); s.hex || s.String() != "(Hello)" {
		t.Errorf("Expected (Hello), got %s", s)
	}
}
