package fitz

// Colorspace identifies a colour space and the number of components a
// colour in it carries.
type Colorspace struct {
	name string
	n    int
	bgr  bool
}

// Fixed colour spaces. These are shared singletons; colour space
// identity is pointer identity.
var (
	DeviceGray = &Colorspace{name: "DeviceGray", n: 1}
	DeviceRGB  = &Colorspace{name: "DeviceRGB", n: 3}
	DeviceBGR  = &Colorspace{name: "DeviceBGR", n: 3, bgr: true}
	DeviceCMYK = &Colorspace{name: "DeviceCMYK", n: 4}
)

// Name returns the colour space name.
func (cs *Colorspace) Name() string { return cs.name }

// N returns the number of colour components, not counting alpha.
func (cs *Colorspace) N() int { return cs.n }

// ClampColor clamps each component to [0, 1] and pads or truncates the
// slice to the colour space's component count. Missing components
// default to 0.
func (cs *Colorspace) ClampColor(color []float64) []float64 {
	out := make([]float64, cs.n)
	for i := range out {
		if i >= len(color) {
			break
		}
		v := color[i]
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		out[i] = v
	}
	return out
}

// toRGB converts a colour in this space to 8-bit RGB.
func (cs *Colorspace) toRGB(color []float64) (r, g, b uint8) {
	c := cs.ClampColor(color)
	switch cs.n {
	case 1:
		v := uint8(c[0]*255 + 0.5)
		return v, v, v
	case 3:
		if cs.bgr {
			c[0], c[2] = c[2], c[0]
		}
		return uint8(c[0]*255 + 0.5), uint8(c[1]*255 + 0.5), uint8(c[2]*255 + 0.5)
	case 4:
		// Naive CMYK conversion, same as the rasteriser's.
		r := (1 - c[0]) * (1 - c[3])
		g := (1 - c[1]) * (1 - c[3])
		b := (1 - c[2]) * (1 - c[3])
		return uint8(r*255 + 0.5), uint8(g*255 + 0.5), uint8(b*255 + 0.5)
	}
	return 0, 0, 0
}
