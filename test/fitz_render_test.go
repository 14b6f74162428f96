package test

import (
	"bufio"
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/novvoo/go-fitz/pkg/fitz"
)

// TestRenderToPNG renders the first page and round-trips the PNG file
func TestRenderToPNG(t *testing.T) {
	doc, err := fitz.OpenDocument(samplePath())
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}

	pix, err := fitz.NewPixmapFromDocument(doc, 0, fitz.Identity, fitz.DeviceRGB, false)
	if err != nil {
		t.Fatalf("NewPixmapFromDocument failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "page1.png")
	if err := pix.SavePNG(path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("PNG decode failed: %v", err)
	}
	if img.Bounds().Dx() != pix.Width() || img.Bounds().Dy() != pix.Height() {
		t.Errorf("Expected %dx%d image, got %dx%d",
			pix.Width(), pix.Height(), img.Bounds().Dx(), img.Bounds().Dy())
	}
}

// TestWritePPMOutput writes a downscaled page as ASCII PPM
func TestWritePPMOutput(t *testing.T) {
	doc, err := fitz.OpenDocument(samplePath())
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}

	pix, err := fitz.NewPixmapFromDocument(doc, 0, fitz.Scale(0.2, 0.2), fitz.DeviceRGB, false)
	if err != nil {
		t.Fatalf("NewPixmapFromDocument failed: %v", err)
	}

	var buf bytes.Buffer
	if err := pix.WritePPM(fitz.NewOutputWithWriter(&buf)); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	sc := bufio.NewScanner(&buf)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !sc.Scan() || sc.Text() != "P3" {
		t.Fatalf("Expected P3 magic, got %q", sc.Text())
	}
	if !sc.Scan() {
		t.Fatal("Missing dimension line")
	}
	var w, h int
	if _, err := fmt.Sscanf(sc.Text(), "%d %d", &w, &h); err != nil {
		t.Fatalf("Bad dimension line %q: %v", sc.Text(), err)
	}
	if w != pix.Width() || h != pix.Height() {
		t.Errorf("Expected %dx%d, got %dx%d", pix.Width(), pix.Height(), w, h)
	}

	rows := 0
	if sc.Scan() { // maxval
		for sc.Scan() {
			rows++
		}
	}
	if rows != h {
		t.Errorf("Expected %d pixel rows, got %d", h, rows)
	}
}

// TestPixmapColorspaces renders into gray and checks the layout
func TestPixmapColorspaces(t *testing.T) {
	doc, err := fitz.OpenDocument(samplePath())
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}

	pix, err := fitz.NewPixmapFromDocument(doc, 0, fitz.Scale(0.1, 0.1), fitz.DeviceGray, false)
	if err != nil {
		t.Fatalf("NewPixmapFromDocument failed: %v", err)
	}
	if pix.N() != 1 {
		t.Errorf("Expected 1 component, got %d", pix.N())
	}
	if pix.Stride() != pix.Width() {
		t.Errorf("Expected stride %d, got %d", pix.Width(), pix.Stride())
	}
	if pix.Colorspace().Name() != "DeviceGray" {
		t.Errorf("Expected DeviceGray, got %q", pix.Colorspace().Name())
	}
}

// TestDocumentWriter renders every page through a DocumentWriter
func TestDocumentWriter(t *testing.T) {
	doc, err := fitz.OpenDocument(samplePath())
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "page-%d.png")
	w, err := fitz.NewDocumentWriter(out, "png", "resolution=36")
	if err != nil {
		t.Fatalf("NewDocumentWriter failed: %v", err)
	}

	for i := 0; i < doc.CountPages(); i++ {
		page, err := doc.LoadPage(i)
		if err != nil {
			t.Fatalf("LoadPage failed: %v", err)
		}
		dev, err := w.BeginPage(page.Bound())
		if err != nil {
			t.Fatalf("BeginPage failed: %v", err)
		}
		if err := page.Run(dev, fitz.Identity, nil); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if err := w.EndPage(); err != nil {
			t.Fatalf("EndPage failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for i := 1; i <= doc.CountPages(); i++ {
		name := filepath.Join(dir, fmt.Sprintf("page-%d.png", i))
		if _, err := os.Stat(name); err != nil {
			t.Errorf("Expected page file %s: %v", name, err)
		}
	}
}

// TestOutputStreams checks the fixed stream outputs
func TestOutputStreams(t *testing.T) {
	if got := fitz.Stdout().State(); got != "stdout" {
		t.Errorf("Expected stdout, got %q", got)
	}
	if got := fitz.Stderr().State(); got != "stderr" {
		t.Errorf("Expected stderr, got %q", got)
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	out, err := fitz.NewOutputWithPath(path)
	if err != nil {
		t.Fatalf("NewOutputWithPath failed: %v", err)
	}
	if got := out.State(); got != "file" {
		t.Errorf("Expected file, got %q", got)
	}
	if _, err := out.Write([]byte("data")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if b, _ := os.ReadFile(path); string(b) != "data" {
		t.Errorf("Expected written data, got %q", b)
	}
}

// TestBufferAndBitmap exercises the remaining small binding types
func TestBufferAndBitmap(t *testing.T) {
	buf := fitz.NewBuffer()
	buf.Write([]byte("Hello, world!"))
	if buf.Len() != 13 {
		t.Errorf("Expected 13 bytes, got %d", buf.Len())
	}
	data := buf.Extract()
	if string(data) != "Hello, world!" || buf.Len() != 0 {
		t.Errorf("Extract mismatch: %q (len %d)", data, buf.Len())
	}

	bm := fitz.NewBitmap(10, 20, 8, 72, 72)
	w, h, n, stride := bm.Details()
	if w != 10 || h != 20 || n != 8 || stride != 12 {
		t.Errorf("Expected 10/20/8/12, got %d/%d/%d/%d", w, h, n, stride)
	}

	col := fitz.DeviceRGB.ClampColor([]float64{3.14})
	if col[0] != 1 {
		t.Errorf("Expected clamp to 1, got %g", col[0])
	}
}

// TestDocumentWriterResolution tests that page content scales with the
// writer's resolution option instead of landing unscaled in the corner
func TestDocumentWriterResolution(t *testing.T) {
	doc, err := fitz.OpenDocument(samplePath())
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}
	page, err := doc.LoadPage(0)
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "scaled.png")
	w, err := fitz.NewDocumentWriter(out, "png", "resolution=144")
	if err != nil {
		t.Fatalf("NewDocumentWriter failed: %v", err)
	}
	dev, err := w.BeginPage(page.Bound())
	if err != nil {
		t.Fatalf("BeginPage failed: %v", err)
	}
	if err := page.Run(dev, fitz.Identity, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := w.EndPage(); err != nil {
		t.Fatalf("EndPage failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 1224 || b.Dy() != 1584 {
		t.Fatalf("Expected 1224x1584 at 144 dpi, got %dx%d", b.Dx(), b.Dy())
	}

	// The filled rectangle covers 72..272 x 560..600 in page units,
	// which is 144..544 x 384..464 in device pixels at 144 dpi.
	r, g, _, _ := img.At(300, 424).RGBA()
	if r>>8 < 200 || g>>8 > 100 {
		t.Errorf("Expected the fill at its scaled position, got r=%d g=%d at (300,424)", r>>8, g>>8)
	}
	// At 72 dpi the rectangle would sit at 192..232 in y; that band
	// must be background once the content scales.
	r, g, bb, _ := img.At(150, 212).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bb>>8 != 255 {
		t.Errorf("Expected background at the unscaled position, got r=%d g=%d b=%d at (150,212)",
			r>>8, g>>8, bb>>8)
	}
}
