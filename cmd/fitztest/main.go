// fitztest - smoke test exercising the document API surface
//
// Runs a fixed sequence of operations against each document given on
// the command line: open, metadata lookup, pixmap rendering, PPM dump,
// links, outline walk, structured text, document writer and bitmap
// checks. With no arguments the bundled sample document is used.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/novvoo/go-fitz/pkg/fitz"
)

var (
	logger = log.New(os.Stderr, "", log.Lshortfile)
	prefix string
	testN  int
)

func logf(format string, args ...any) {
	logger.Output(2, prefix+fmt.Sprintf(format, args...))
}

func check(ok bool, format string, args ...any) {
	if !ok {
		logger.Output(2, prefix+"FAIL: "+fmt.Sprintf(format, args...))
		os.Exit(1)
	}
}

func checkErr(err error, what string) {
	if err != nil {
		logger.Output(2, prefix+fmt.Sprintf("FAIL: %s: %v", what, err))
		os.Exit(1)
	}
}

func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{defaultSample()}
	}
	for _, path := range paths {
		prefix = filepath.Base(path) + ": "
		test(path)
		prefix = ""
	}
	logf("finished")
}

func defaultSample() string {
	// Next to the executable's source tree when run from the repo,
	// else beside the binary.
	candidates := []string{
		"testdata/sample.pdf",
		filepath.Join(filepath.Dir(os.Args[0]), "sample.pdf"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}

func test(path string) {
	logf("testing path=%s", path)
	testN++

	// Buffer contract: extraction is supported, raw storage access is
	// not.
	b := fitz.NewBuffer()
	_, _, err := b.Storage()
	check(errors.Is(err, fitz.ErrNoStorage), "Buffer.Storage() = %v, want ErrNoStorage", err)
	b.Write([]byte("hello"))
	check(len(b.Extract()) == 5, "Buffer.Extract() length mismatch")
	check(b.Len() == 0, "Buffer not drained by Extract")

	doc, err := fitz.OpenDocument(path)
	checkErr(err, "open")
	logf("doc.NeedsPassword()=%v", doc.NeedsPassword())
	logf("doc.CountPages()=%d", doc.CountPages())
	logf("doc.OutputIntent()=%v", csName(doc.OutputIntent()))

	for _, k := range []string{
		"format",
		"encryption",
		"info:Author",
		"info:Title",
		"info:Creator",
		"info:Producer",
		"qwerty",
	} {
		v, ok := doc.LookupMetadata(k)
		logf("doc.LookupMetadata(%q) = %q (present=%v)", k, v, ok)
		if k == "qwerty" {
			check(!ok, "nonsense metadata key has a value: %q", v)
		}
	}

	zoom := 10.0
	scale := fitz.Scale(zoom/100, zoom/100)
	logf("scale: a=%g b=%g c=%g d=%g e=%g f=%g", scale.A, scale.B, scale.C, scale.D, scale.E, scale.F)

	cs := fitz.DeviceRGB
	clamped := cs.ClampColor([]float64{3.14})
	logf("ClampColor([3.14]) = %v", clamped)
	check(len(clamped) == cs.N() && clamped[0] == 1, "ClampColor result %v", clamped)

	pix, err := fitz.NewPixmapFromDocument(doc, 0, scale, cs, false)
	checkErr(err, "render page 0 from document")
	logf("pixmap: %d %d %d %d", pix.Width(), pix.Height(), pix.Stride(), pix.N())

	name := fmt.Sprintf("fitz_test-out1-%d.png", testN)
	checkErr(pix.SavePNG(name), "save png")
	logf("created %s from document pixmap", name)

	// Re-emit the pixmap as ASCII PPM by walking the raw samples.
	writePPMFromSamples(pix, fmt.Sprintf("fitz_test-out2-%d.ppm", testN))

	page, err := doc.LoadPage(0)
	checkErr(err, "load page 0")
	logf("page.Separations() = %d", page.Separations())
	pix, err = fitz.NewPixmapFromPage(page, scale, cs, false)
	checkErr(err, "render page 0 from page")
	name = fmt.Sprintf("fitz_test-out3-%d.png", testN)
	checkErr(pix.SavePNG(name), "save png")
	logf("created %s from page pixmap", name)

	// Page links.
	logf("links:")
	for l := page.Links(); l != nil; l = l.Next {
		logf("    %v", l)
	}

	// A hand-made link chain must iterate the same way.
	head := fitz.NewLink(fitz.Rect{X0: 0, Y0: 0, X1: 1, Y1: 1}, "hello")
	head.Next = fitz.NewLink(fitz.Rect{X0: 1, Y0: 1, X1: 2, Y1: 2}, "world")
	n := 0
	for l := head; l != nil; l = l.Next {
		logf("    manual link uri=%q", l.URI)
		n++
	}
	check(n == 2, "manual link chain length %d", n)

	walkOutline(doc)
	showStext(doc, page)

	// Copying a Document shares state; the copy renders after the
	// original goes away.
	doc2 := doc
	doc = fitz.Document{}
	pix, err = fitz.NewPixmapFromDocument(doc2, 0, fitz.Identity, cs, false)
	checkErr(err, "render from copied document")
	checkErr(pix.SavePNG(fmt.Sprintf("fitz_test-out4-%d.png", testN)), "save png")

	stdout := fitz.Stdout()
	logf("stdout output state=%q", stdout.State())
	check(stdout.State() == "stdout", "Stdout().State() = %q", stdout.State())

	// Document writer: render the page again through the writer's
	// device.
	wname := fmt.Sprintf("fitz_test-out5-%d.png", testN)
	dw, err := fitz.NewDocumentWriter(wname, "png", "")
	checkErr(err, "document writer")
	dev, err := dw.BeginPage(page.Bound())
	checkErr(err, "begin page")
	checkErr(page.Run(dev, fitz.Identity, &fitz.Cookie{}), "run page into writer")
	checkErr(dw.EndPage(), "end page")
	checkErr(dw.Close(), "close writer")
	logf("created %s via DocumentWriter", wname)

	// Bitmap geometry: rows are padded to 32-bit words.
	bm := fitz.NewBitmap(10, 20, 8, 72, 72)
	w, h, nn, stride := bm.Details()
	logf("bitmap details: %d %d %d %d", w, h, nn, stride)
	check(w == 10 && h == 20 && nn == 8 && stride == 12,
		"bitmap details = %d %d %d %d, want 10 20 8 12", w, h, nn, stride)

	logf("finished test of %s", path)
}

func csName(cs *fitz.Colorspace) string {
	if cs == nil {
		return "<none>"
	}
	return cs.Name()
}

func writePPMFromSamples(pix *fitz.Pixmap, name string) {
	f, err := os.Create(name)
	checkErr(err, "create ppm")
	defer f.Close()

	samples := pix.Samples()
	stride, n := pix.Stride(), pix.N()
	fmt.Fprintf(f, "P3\n%d %d\n255\n", pix.Width(), pix.Height())
	for y := 0; y < pix.Height(); y++ {
		var row strings.Builder
		for x := 0; x < pix.Width(); x++ {
			if x > 0 {
				row.WriteString("  ")
			}
			o := y*stride + x*n
			fmt.Fprintf(&row, "%3d %3d %3d", samples[o], samples[o+1], samples[o+2])
		}
		fmt.Fprintln(f, row.String())
	}
	logf("created %s by scanning pixmap samples", name)
}

// walkOutline iterates the outline depth first using the cursor
// primitives and counts the valid items.
func walkOutline(doc fitz.Document) {
	logf("outline:")
	items := 0
	depth := 0
	it := fitz.NewOutlineIterator(doc)
	for {
		item := it.Item()
		if item.Valid() {
			logf("%suri=%q is_open=%v title=%q",
				strings.Repeat(" ", depth*4), item.URI(), item.IsOpen(), item.Title())
			items++
		}
		r := it.Down()
		if r >= 0 {
			depth++
			continue
		}
		r = it.Next()
		check(r != 0, "Next() moved from an empty list position")
		end := false
		for {
			r = it.Up()
			if r < 0 {
				end = true
				break
			}
			depth--
			if it.Next() == 0 {
				break
			}
		}
		if end {
			break
		}
	}
	logf("outline items: %d", items)
}

func showStext(doc fitz.Document, page *fitz.Page) {
	// A page far beyond the end must fail cleanly.
	if _, err := fitz.NewStextPageFromDocument(doc, 40, fitz.StextOptions{}); err != nil {
		logf("no page 40: %v", err)
	}

	tp, err := fitz.NewStextPage(page, fitz.StextOptions{})
	checkErr(err, "stext page")

	// The device route must agree with the constructor route.
	tp2 := fitz.NewStextPageForBound(page.Bound())
	dev := fitz.StextDevice(tp2, fitz.StextOptions{})
	checkErr(page.Run(dev, fitz.Identity, &fitz.Cookie{}), "run page into stext device")
	checkErr(dev.Close(), "close stext device")

	logf("stext page:")
	for _, block := range tp.Blocks() {
		logf("    block: type=%d bbox=%v", block.Type, block.BBox)
		for _, line := range block.Lines() {
			logf("        line: wmode=%d dir=%v bbox=%v", line.WMode, line.Dir, line.BBox)
			for _, c := range line.Chars() {
				logf("            char: %q color=%06x origin=%v size=%6.2f font=(mono=%v bold=%v italic=%v substitute=%v name=%s)",
					c.Rune, c.Color, c.Origin, c.Size,
					c.Font.IsMono, c.Font.IsBold, c.Font.IsItalic, c.Font.Substitute, c.Font.Name)
			}
		}
	}
}
