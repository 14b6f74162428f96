package fitz

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
)

// imageData is a decoded image XObject.
type imageData struct {
	width, height int
	img           image.Image
	isMask        bool
}

// loadImage decodes an image XObject stream. JPEG payloads go through
// image/jpeg; everything else is interpreted as raw samples.
func (d *Document) loadImage(stm *pdfStream) (*imageData, error) {
	w, _ := stm.dict.getInt("Width")
	h, _ := stm.dict.getInt("Height")
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("fitz: image with zero extent")
	}
	out := &imageData{width: int(w), height: int(h)}
	if mask, ok := stm.dict.getBool("ImageMask"); ok && mask {
		out.isMask = true
	}

	filters, _ := streamFilters(d, stm.dict)
	for _, f := range filters {
		switch f {
		case "DCTDecode", "DCT":
			data, err := d.decodeStream(stm)
			if err != nil {
				return nil, err
			}
			img, err := jpeg.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("fitz: jpeg: %w", err)
			}
			out.img = img
			return out, nil
		case "JPXDecode", "CCITTFaxDecode", "JBIG2Decode":
			// Not decoded; draw a grey placeholder of the right size.
			out.img = &image.Uniform{C: color.Gray{Y: 0x80}}
			return out, nil
		}
	}

	data, err := d.decodeStream(stm)
	if err != nil {
		return nil, err
	}
	bpc := int64(8)
	if v, ok := stm.dict.getInt("BitsPerComponent"); ok {
		bpc = v
	}
	cs := d.imageColorspace(stm.dict)

	switch {
	case out.isMask || (bpc == 1 && cs.N() == 1):
		out.img = rawBilevel(data, int(w), int(h))
	case bpc == 8 && cs == DeviceGray:
		out.img = rawGray(data, int(w), int(h))
	case bpc == 8 && cs == DeviceRGB:
		out.img = rawRGB(data, int(w), int(h))
	case bpc == 8 && cs == DeviceCMYK:
		out.img = rawCMYK(data, int(w), int(h))
	default:
		return nil, fmt.Errorf("fitz: unsupported image: %d bpc %s", bpc, cs.Name())
	}
	return out, nil
}

func (d *Document) imageColorspace(dict pdfDict) *Colorspace {
	switch v := d.resolveShallow(dict.get("ColorSpace")).(type) {
	case pdfName:
		switch v {
		case "DeviceGray", "CalGray", "G":
			return DeviceGray
		case "DeviceCMYK", "CMYK":
			return DeviceCMYK
		}
		return DeviceRGB
	case pdfArray:
		if len(v) > 0 {
			if fam, ok := v[0].(pdfName); ok && (fam == "CalGray" || fam == "Separation") {
				return DeviceGray
			}
		}
		return DeviceRGB
	}
	return DeviceRGB
}

func rawGray(data []byte, w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, data)
	return img
}

func rawRGB(data []byte, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			if i+2 >= len(data) {
				return img
			}
			img.SetRGBA(x, y, color.RGBA{data[i], data[i+1], data[i+2], 0xFF})
		}
	}
	return img
}

func rawCMYK(data []byte, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if i+3 >= len(data) {
				return img
			}
			r, g, b := color.CMYKToRGB(data[i], data[i+1], data[i+2], data[i+3])
			img.SetRGBA(x, y, color.RGBA{r, g, b, 0xFF})
		}
	}
	return img
}

func rawBilevel(data []byte, w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	stride := (w + 7) / 8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*stride + x/8
			if i >= len(data) {
				return img
			}
			if data[i]&(0x80>>uint(x%8)) == 0 {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	return img
}
