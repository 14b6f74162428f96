package fitz

// Bitmap is a 1-bit-per-component packed raster, the form halftoned
// output uses. Rows are padded to a 32-bit word boundary.
type Bitmap struct {
	w, h       int
	n          int // components per pixel
	xres, yres int
	stride     int
	samples    []byte
}

// NewBitmap allocates a bitmap of w by h pixels with n one-bit
// components per pixel at the given resolution.
func NewBitmap(w, h, n, xres, yres int) *Bitmap {
	stride := ((w*n + 31) / 32) * 4
	return &Bitmap{
		w: w, h: h, n: n,
		xres: xres, yres: yres,
		stride:  stride,
		samples: make([]byte, stride*h),
	}
}

// Details returns the bitmap's width, height, component count and row
// stride in bytes.
func (b *Bitmap) Details() (w, h, n, stride int) {
	return b.w, b.h, b.n, b.stride
}

// Resolution returns the bitmap's resolution in dots per inch.
func (b *Bitmap) Resolution() (xres, yres int) {
	return b.xres, b.yres
}

// Samples returns the packed sample bytes.
func (b *Bitmap) Samples() []byte { return b.samples }
