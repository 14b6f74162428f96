package fitz

import (
	"fmt"
	"image/png"
	"os"
	"strings"
)

// DocumentWriter writes rendered pages out as a sequence of image
// files, one per page. The path acts as a template: a "%d" is replaced
// by the 1-based page number, otherwise the number is inserted before
// the extension from the second page on.
type DocumentWriter struct {
	path   string
	format string
	dpi    float64
	pageNo int
	pix    *Pixmap
	dev    Device
	closed bool
}

// NewDocumentWriter creates a writer producing the given image format:
// "png", "ppm", "pgm" or "pam". Options are "key=value" pairs
// separated by commas; "resolution=N" selects the render DPI.
func NewDocumentWriter(path, format, options string) (*DocumentWriter, error) {
	switch format {
	case "png", "ppm", "pgm", "pam":
	default:
		return nil, fmt.Errorf("fitz: unsupported document writer format %q", format)
	}
	w := &DocumentWriter{path: path, format: format, dpi: 96}
	for _, opt := range strings.Split(options, ",") {
		if opt == "" {
			continue
		}
		k, v, _ := strings.Cut(opt, "=")
		switch k {
		case "resolution":
			fmt.Sscanf(v, "%g", &w.dpi)
		default:
			return nil, fmt.Errorf("fitz: unknown document writer option %q", k)
		}
	}
	return w, nil
}

// BeginPage starts a new page of the given size and returns the device
// to run the page content into.
func (w *DocumentWriter) BeginPage(mediabox Rect) (Device, error) {
	if w.dev != nil {
		return nil, fmt.Errorf("fitz: BeginPage before EndPage")
	}
	if w.closed {
		return nil, fmt.Errorf("fitz: document writer is closed")
	}
	scale := w.dpi / 72
	wpx := int(mediabox.Width()*scale + 0.5)
	hpx := int(mediabox.Height()*scale + 0.5)
	if wpx < 1 {
		wpx = 1
	}
	if hpx < 1 {
		hpx = 1
	}
	cs := DeviceRGB
	if w.format == "pgm" {
		cs = DeviceGray
	}
	w.pix = newPixmap(wpx, hpx, cs, false)
	// Page content arrives in page units; the canvas is dpi-scaled, so
	// bake the scale (and the box origin) into the device.
	m := Translate(-mediabox.X0, -mediabox.Y0).Concat(Scale(scale, scale))
	w.dev = &transformDevice{dev: newDrawDevice(w.pix.canvas), m: m}
	w.pageNo++
	return w.dev, nil
}

// transformDevice pre-concatenates a fixed matrix onto everything the
// wrapped device receives. Text spans carry device-space positions, so
// those are mapped explicitly rather than through the ctm.
type transformDevice struct {
	dev Device
	m   Matrix
}

func (td *transformDevice) FillPath(path *Path, evenOdd bool, ctm Matrix, cs *Colorspace, col []float64, alpha float64) {
	td.dev.FillPath(path, evenOdd, ctm.Concat(td.m), cs, col, alpha)
}

func (td *transformDevice) StrokePath(path *Path, stroke *StrokeState, ctm Matrix, cs *Colorspace, col []float64, alpha float64) {
	td.dev.StrokePath(path, stroke, ctm.Concat(td.m), cs, col, alpha)
}

func (td *transformDevice) FillText(span *TextSpan, ctm Matrix, cs *Colorspace, col []float64, alpha float64) {
	out := *span
	out.Size = span.Size * td.m.Expansion()
	out.Chars = make([]TextChar, len(span.Chars))
	for i, c := range span.Chars {
		c.Origin = td.m.TransformPoint(c.Origin)
		c.Quad = td.m.TransformQuad(c.Quad)
		c.Advance *= td.m.Expansion()
		out.Chars[i] = c
	}
	td.dev.FillText(&out, ctm.Concat(td.m), cs, col, alpha)
}

func (td *transformDevice) FillImage(img *imageData, ctm Matrix, alpha float64) {
	td.dev.FillImage(img, ctm.Concat(td.m), alpha)
}

func (td *transformDevice) Close() error { return td.dev.Close() }

// EndPage finishes the current page and writes its image file.
func (w *DocumentWriter) EndPage() error {
	if w.dev == nil {
		return fmt.Errorf("fitz: EndPage without BeginPage")
	}
	if err := w.dev.Close(); err != nil {
		return err
	}
	w.pix.convert()
	err := w.writePage()
	w.dev = nil
	w.pix = nil
	return err
}

func (w *DocumentWriter) pagePath() string {
	if strings.Contains(w.path, "%d") {
		return strings.Replace(w.path, "%d", fmt.Sprintf("%d", w.pageNo), 1)
	}
	if w.pageNo == 1 {
		return w.path
	}
	if dot := strings.LastIndex(w.path, "."); dot > 0 {
		return fmt.Sprintf("%s-%d%s", w.path[:dot], w.pageNo, w.path[dot:])
	}
	return fmt.Sprintf("%s-%d", w.path, w.pageNo)
}

func (w *DocumentWriter) writePage() error {
	path := w.pagePath()
	switch w.format {
	case "png":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := png.Encode(f, w.pix.canvas); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case "ppm":
		out, err := NewOutputWithPath(path)
		if err != nil {
			return err
		}
		if err := w.pix.WritePPM(out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	case "pgm":
		return w.writePGM(path)
	case "pam":
		return w.writePAM(path)
	}
	return fmt.Errorf("fitz: unsupported document writer format %q", w.format)
}

func (w *DocumentWriter) writePGM(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	pix := w.pix
	fmt.Fprintf(f, "P5\n%d %d\n255\n", pix.w, pix.h)
	for y := 0; y < pix.h; y++ {
		row := pix.samples[y*pix.stride : y*pix.stride+pix.w*pix.n]
		if _, err := f.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

func (w *DocumentWriter) writePAM(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	pix := w.pix
	fmt.Fprintf(f, "P7\nWIDTH %d\nHEIGHT %d\nDEPTH %d\nMAXVAL 255\nTUPLTYPE RGB\nENDHDR\n", pix.w, pix.h, pix.n)
	for y := 0; y < pix.h; y++ {
		row := pix.samples[y*pix.stride : y*pix.stride+pix.w*pix.n]
		if _, err := f.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// Close finishes the document. Further BeginPage calls fail.
func (w *DocumentWriter) Close() error {
	if w.dev != nil {
		if err := w.EndPage(); err != nil {
			return err
		}
	}
	w.closed = true
	return nil
}
