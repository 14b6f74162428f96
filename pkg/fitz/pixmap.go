package fitz

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
)

// Pixmap is a rendered raster: w*h pixels of n components each, where
// n counts the colour components plus one when alpha is carried. The
// samples are packed row-major with the given stride.
type Pixmap struct {
	w, h    int
	n       int
	stride  int
	alpha   bool
	cs      *Colorspace
	samples []byte

	canvas *image.RGBA // render target before conversion
}

// Width returns the pixmap width in pixels.
func (p *Pixmap) Width() int { return p.w }

// Height returns the pixmap height in pixels.
func (p *Pixmap) Height() int { return p.h }

// Stride returns the byte distance between rows.
func (p *Pixmap) Stride() int { return p.stride }

// N returns the number of components per pixel, including alpha.
func (p *Pixmap) N() int { return p.n }

// Colorspace returns the pixmap's colour space.
func (p *Pixmap) Colorspace() *Colorspace { return p.cs }

// Samples returns the raw sample bytes. The slice aliases the pixmap.
func (p *Pixmap) Samples() []byte { return p.samples }

// NewPixmapFromPage renders a page through ctm into a fresh pixmap.
func NewPixmapFromPage(page *Page, ctm Matrix, cs *Colorspace, alpha bool) (*Pixmap, error) {
	bounds := ctm.TransformRect(page.Bound())
	w := int(math.Ceil(bounds.Width()))
	h := int(math.Ceil(bounds.Height()))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	pix := newPixmap(w, h, cs, alpha)

	// Shift so the page's device-space origin lands on pixel (0,0).
	render := ctm.Concat(Translate(-bounds.X0, -bounds.Y0))
	dev := newDrawDevice(pix.canvas)
	if err := page.Run(dev, render, nil); err != nil {
		return nil, err
	}
	if err := dev.Close(); err != nil {
		return nil, err
	}
	pix.convert()
	return pix, nil
}

// NewPixmapFromDocument renders page number (0-based) of the document,
// the convenience form the harness uses first.
func NewPixmapFromDocument(doc Document, number int, ctm Matrix, cs *Colorspace, alpha bool) (*Pixmap, error) {
	page, err := doc.LoadPage(number)
	if err != nil {
		return nil, err
	}
	return NewPixmapFromPage(page, ctm, cs, alpha)
}

func newPixmap(w, h int, cs *Colorspace, alpha bool) *Pixmap {
	n := cs.N()
	if alpha {
		n++
	}
	pix := &Pixmap{
		w: w, h: h, n: n,
		stride: w * n,
		alpha:  alpha,
		cs:     cs,
		canvas: image.NewRGBA(image.Rect(0, 0, w, h)),
	}
	if !alpha {
		// Opaque white page background.
		draw.Draw(pix.canvas, pix.canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	}
	return pix
}

// convert repacks the RGBA canvas into the pixmap's sample layout.
func (p *Pixmap) convert() {
	p.samples = make([]byte, p.h*p.stride)
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			c := p.canvas.RGBAAt(x, y)
			o := y*p.stride + x*p.n
			i := 0
			switch p.cs {
			case DeviceGray:
				// Integer luma, same coefficients the PNG grayscale
				// conversion uses.
				p.samples[o] = uint8((299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000)
				i = 1
			case DeviceBGR:
				p.samples[o], p.samples[o+1], p.samples[o+2] = c.B, c.G, c.R
				i = 3
			case DeviceCMYK:
				cc, mm, yy, kk := color.RGBToCMYK(c.R, c.G, c.B)
				p.samples[o], p.samples[o+1], p.samples[o+2], p.samples[o+3] = cc, mm, yy, kk
				i = 4
			default:
				p.samples[o], p.samples[o+1], p.samples[o+2] = c.R, c.G, c.B
				i = 3
			}
			if p.alpha {
				p.samples[o+i] = c.A
			}
		}
	}
}

// Image returns the pixmap as an image.Image sharing the render
// canvas.
func (p *Pixmap) Image() image.Image { return p.canvas }

// SavePNG writes the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var img image.Image = p.canvas
	if p.cs == DeviceGray {
		g := image.NewGray(image.Rect(0, 0, p.w, p.h))
		for y := 0; y < p.h; y++ {
			for x := 0; x < p.w; x++ {
				g.SetGray(x, y, color.Gray{Y: p.samples[y*p.stride+x*p.n]})
			}
		}
		img = g
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePPM writes the pixmap in ASCII PPM (P3) form: one row of
// space-separated 8-bit RGB triples per scanline.
func (p *Pixmap) WritePPM(w *Output) error {
	if _, err := fmt.Fprintf(w, "P3\n%d %d\n255\n", p.w, p.h); err != nil {
		return err
	}
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			o := y*p.stride + x*p.n
			var r, g, b byte
			switch p.cs {
			case DeviceGray:
				r, g, b = p.samples[o], p.samples[o], p.samples[o]
			case DeviceBGR:
				r, g, b = p.samples[o+2], p.samples[o+1], p.samples[o]
			case DeviceCMYK:
				r, g, b = color.CMYKToRGB(p.samples[o], p.samples[o+1], p.samples[o+2], p.samples[o+3])
			default:
				r, g, b = p.samples[o], p.samples[o+1], p.samples[o+2]
			}
			sep := "  "
			if x == 0 {
				sep = ""
			}
			if _, err := fmt.Fprintf(w, "%s%3d %3d %3d", sep, r, g, b); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
