package fitz

import (
	"image"
	"image/color"

	"github.com/golang/freetype/raster"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// drawDevice rasterises page content into an RGBA canvas. The pixmap
// converts the canvas into its own sample layout afterwards.
type drawDevice struct {
	dst *image.RGBA
	r   *raster.Rasterizer
}

// DrawDevice returns a device rendering into the pixmap's canvas. The
// ctm passed to Page.Run must match the one the pixmap was created
// with.
func DrawDevice(pix *Pixmap) Device {
	return newDrawDevice(pix.canvas)
}

func newDrawDevice(dst *image.RGBA) *drawDevice {
	b := dst.Bounds()
	r := raster.NewRasterizer(b.Dx(), b.Dy())
	r.UseNonZeroWinding = true
	return &drawDevice{dst: dst, r: r}
}

func toFixed(p Point) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(p.X*64 + 0.5),
		Y: fixed.Int26_6(p.Y*64 + 0.5),
	}
}

// rasterPath converts a user-space path under ctm into the
// rasteriser's form.
func rasterPath(p *Path, ctm Matrix) raster.Path {
	var rp raster.Path
	var start fixed.Point26_6
	open := false
	for _, e := range p.elems {
		switch e.op {
		case pathMoveTo:
			if open {
				rp.Add1(start)
			}
			start = toFixed(ctm.TransformPoint(e.p[0]))
			rp.Start(start)
			open = true
		case pathLineTo:
			if open {
				rp.Add1(toFixed(ctm.TransformPoint(e.p[0])))
			}
		case pathCurveTo:
			if open {
				rp.Add3(
					toFixed(ctm.TransformPoint(e.p[0])),
					toFixed(ctm.TransformPoint(e.p[1])),
					toFixed(ctm.TransformPoint(e.p[2])),
				)
			}
		case pathClose:
			if open {
				rp.Add1(start)
			}
		}
	}
	return rp
}

func (dd *drawDevice) paint(cs *Colorspace, col []float64, alpha float64) raster.Painter {
	r, g, b := cs.toRGB(col)
	a := uint8(alpha*255 + 0.5)
	p := raster.NewRGBAPainter(dd.dst)
	p.SetColor(color.NRGBA{R: r, G: g, B: b, A: a})
	return p
}

func (dd *drawDevice) FillPath(path *Path, evenOdd bool, ctm Matrix, cs *Colorspace, col []float64, alpha float64) {
	dd.r.Clear()
	dd.r.UseNonZeroWinding = !evenOdd
	dd.r.AddPath(rasterPath(path, ctm))
	dd.r.Rasterize(dd.paint(cs, col, alpha))
}

func (dd *drawDevice) StrokePath(path *Path, stroke *StrokeState, ctm Matrix, cs *Colorspace, col []float64, alpha float64) {
	width := stroke.LineWidth * ctm.Expansion()
	if width < 0.5 {
		width = 0.5
	}
	var cap raster.Capper = raster.RoundCapper
	if stroke.LineCap == 2 {
		cap = raster.SquareCapper
	} else if stroke.LineCap == 0 {
		cap = raster.ButtCapper
	}
	var join raster.Joiner = raster.RoundJoiner
	if stroke.LineJoin == 0 {
		join = raster.BevelJoiner
	}
	dd.r.Clear()
	dd.r.UseNonZeroWinding = true
	dd.r.AddStroke(rasterPath(path, ctm), fixed.Int26_6(width*64), cap, join)
	dd.r.Rasterize(dd.paint(cs, col, alpha))
}

func (dd *drawDevice) FillText(span *TextSpan, ctm Matrix, cs *Colorspace, col []float64, alpha float64) {
	if span.Font == nil || len(span.Chars) == 0 {
		return
	}
	face := faceForSpan(span)
	if face == nil {
		return
	}
	defer face.Close()
	r, g, b := cs.toRGB(col)
	a := uint8(alpha*255 + 0.5)
	src := image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: a})
	dr := &font.Drawer{Dst: dd.dst, Src: src, Face: face}
	for _, c := range span.Chars {
		if c.Rune == 0 || c.Rune == ' ' {
			continue
		}
		dr.Dot = toFixed(c.Origin)
		dr.DrawString(string(c.Rune))
	}
}

// faceForSpan builds a face at the span's device size. The span carries
// the engine font through its FontInfo by name lookup; substitute
// faces cover fonts whose program could not be used.
func faceForSpan(span *TextSpan) font.Face {
	size := span.Size
	if size <= 0 || size > 1000 {
		return nil
	}
	var f *truetype.Font
	if span.Font.ttf != nil {
		f = span.Font.ttf
	} else {
		f = substituteFace(span.Font)
	}
	if f == nil {
		return nil
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
}

func (dd *drawDevice) FillImage(img *imageData, ctm Matrix, alpha float64) {
	if img == nil || img.img == nil {
		return
	}
	src := img.img
	if u, ok := src.(*image.Uniform); ok {
		// Give the placeholder its declared extent.
		tmp := image.NewRGBA(image.Rect(0, 0, img.width, img.height))
		draw.Draw(tmp, tmp.Bounds(), u, image.Point{}, draw.Src)
		src = tmp
	}
	b := src.Bounds()
	// Image space: x right, y down over [0,w)x[0,h); the unit square
	// maps through the ctm with a vertical flip.
	unit := Matrix{A: 1 / float64(b.Dx()), D: -1 / float64(b.Dy()), F: 1}
	m := unit.Concat(ctm)
	aff := f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
	draw.ApproxBiLinear.Transform(dd.dst, aff, src, b, draw.Over, nil)
}

func (dd *drawDevice) Close() error { return nil }
