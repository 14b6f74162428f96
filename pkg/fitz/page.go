package fitz

import (
	"fmt"
)

// Page is a loaded page, ready to be run through a device.
type Page struct {
	doc    Document
	number int
	dict   pdfDict
}

// ErrPageRange is reported when a page number is out of range.
var ErrPageRange = fmt.Errorf("fitz: page number out of range")

// LoadPage loads page number (0-based).
func (doc Document) LoadPage(number int) (*Page, error) {
	if number < 0 || number >= len(doc.d.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, number, len(doc.d.pages))
	}
	return &Page{doc: doc, number: number, dict: doc.d.pages[number]}, nil
}

// Number returns the 0-based page number.
func (p *Page) Number() int { return p.number }

// Bound returns the page's visible area: the crop box clipped to the
// media box, normalised so that the origin is the lower-left corner.
func (p *Page) Bound() Rect {
	return p.CropBox()
}

// MediaBox returns the page's media box.
func (p *Page) MediaBox() Rect {
	r := p.rectFromKey("MediaBox")
	if r.IsEmpty() {
		// US Letter is the conventional fallback.
		r = Rect{0, 0, 612, 792}
	}
	return r
}

// CropBox returns the page's crop box, clipped to the media box.
func (p *Page) CropBox() Rect {
	crop := p.rectFromKey("CropBox")
	if crop.IsEmpty() {
		return p.MediaBox()
	}
	media := p.MediaBox()
	if crop.X0 < media.X0 {
		crop.X0 = media.X0
	}
	if crop.Y0 < media.Y0 {
		crop.Y0 = media.Y0
	}
	if crop.X1 > media.X1 {
		crop.X1 = media.X1
	}
	if crop.Y1 > media.Y1 {
		crop.Y1 = media.Y1
	}
	return crop
}

// Rotate returns the page's rotation in degrees, normalised to one of
// 0, 90, 180, 270.
func (p *Page) Rotate() int {
	d := &Document{d: p.doc.d}
	n, _ := objNumber(d.resolveShallow(p.dict.get("Rotate")))
	r := int(n) % 360
	if r < 0 {
		r += 360
	}
	return r / 90 * 90
}

func (p *Page) rectFromKey(key string) Rect {
	d := &Document{d: p.doc.d}
	arr, ok := d.resolveShallow(p.dict.get(key)).(pdfArray)
	if !ok || len(arr) < 4 {
		return Rect{}
	}
	var v [4]float64
	for i := 0; i < 4; i++ {
		n, _ := objNumber(d.resolveShallow(arr[i]))
		v[i] = n
	}
	return Rect{v[0], v[1], v[2], v[3]}.Normalize()
}

// Separations returns the number of rendering separations the page
// declares. Ordinary composite pages have none.
func (p *Page) Separations() int {
	d := &Document{d: p.doc.d}
	sep, ok := d.resolveShallow(p.dict.get("SeparationInfo")).(pdfDict)
	if !ok {
		return 0
	}
	names, ok := d.resolveShallow(sep.get("DeviceColorant")).(pdfArray)
	if !ok {
		if _, ok := sep.getName("DeviceColorant"); ok {
			return 1
		}
		return 0
	}
	return len(names)
}

// contents returns the page's concatenated, decoded content streams.
func (p *Page) contents() ([]byte, error) {
	d := &Document{d: p.doc.d}
	obj := d.resolveShallow(p.dict.get("Contents"))
	var out []byte
	appendStream := func(o pdfObject) error {
		stm, ok := d.resolveShallow(o).(*pdfStream)
		if !ok {
			return nil
		}
		data, err := d.decodeStream(stm)
		if err != nil {
			return err
		}
		out = append(out, data...)
		out = append(out, '\n')
		return nil
	}
	switch v := obj.(type) {
	case *pdfStream:
		if err := appendStream(v); err != nil {
			return nil, err
		}
	case pdfArray:
		for _, o := range v {
			if err := appendStream(o); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// resources returns the page's resource dictionary.
func (p *Page) resources() pdfDict {
	d := &Document{d: p.doc.d}
	res, _ := d.resolveShallow(p.dict.get("Resources")).(pdfDict)
	return res
}

// Run interprets the page's content through the device. The cookie, if
// non-nil, receives progress and can request an abort.
func (p *Page) Run(dev Device, ctm Matrix, cookie *Cookie) error {
	content, err := p.contents()
	if err != nil {
		return err
	}
	interp := newInterpreter(p.doc, dev, cookie)
	// The base transform flips PDF user space (y up) into device
	// space (y down) before the caller's matrix applies.
	bound := p.Bound()
	flip := Matrix{A: 1, D: -1, F: bound.Y1 + bound.Y0}
	base := flip.Concat(ctm)
	if err := interp.run(content, p.resources(), base); err != nil {
		return err
	}
	if cookie != nil {
		cookie.Progress = cookie.ProgressMax
	}
	return nil
}
