package fitz

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"

	tifflzw "golang.org/x/image/tiff/lzw"
)

// decodeStream applies the stream's filter chain and returns the
// decoded bytes. DCTDecode and JPXDecode payloads are returned as-is;
// image decoding happens later.
func (d *Document) decodeStream(s *pdfStream) ([]byte, error) {
	filters, parms := streamFilters(d, s.dict)
	data := s.raw
	for i, name := range filters {
		var parm pdfDict
		if i < len(parms) {
			parm = parms[i]
		}
		var err error
		switch name {
		case "FlateDecode", "Fl":
			data, err = flateDecode(data)
			if err == nil {
				data, err = applyPredictor(d, data, parm)
			}
		case "ASCIIHexDecode", "AHx":
			data, err = asciiHexDecode(data)
		case "ASCII85Decode", "A85":
			data, err = ascii85Decode(data)
		case "RunLengthDecode", "RL":
			data, err = runLengthDecode(data)
		case "LZWDecode", "LZW":
			data, err = lzwDecode(data, parm)
			if err == nil {
				data, err = applyPredictor(d, data, parm)
			}
		case "DCTDecode", "DCT", "JPXDecode":
			// Leave compressed; the image path decodes these.
			return data, nil
		case "Crypt":
			// Identity crypt filter only.
		default:
			err = fmt.Errorf("fitz: unsupported filter /%s", name)
		}
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// streamFilters collects the filter names and their decode parameters,
// resolving indirect values.
func streamFilters(d *Document, dict pdfDict) ([]string, []pdfDict) {
	var names []string
	var parms []pdfDict

	f := dict.get("Filter")
	if f == nil {
		f = dict.get("F")
	}
	f = d.resolveShallow(f)
	dp := d.resolveShallow(dict.get("DecodeParms"))
	if dp == nil {
		dp = d.resolveShallow(dict.get("DP"))
	}

	switch v := f.(type) {
	case pdfName:
		names = []string{string(v)}
		if pd, ok := dp.(pdfDict); ok {
			parms = []pdfDict{pd}
		}
	case pdfArray:
		for _, o := range v {
			if n, ok := d.resolveShallow(o).(pdfName); ok {
				names = append(names, string(n))
			}
		}
		if pa, ok := dp.(pdfArray); ok {
			for _, o := range pa {
				pd, _ := d.resolveShallow(o).(pdfDict)
				parms = append(parms, pd)
			}
		}
	}
	return names, parms
}

func flateDecode(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fitz: flate: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	// Tolerate truncated tails; some producers omit the checksum.
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("fitz: flate: %w", err)
	}
	return out, nil
}

func asciiHexDecode(data []byte) ([]byte, error) {
	var out []byte
	var hi byte
	have := false
	for _, c := range data {
		if c == '>' {
			break
		}
		if isWhite(c) {
			continue
		}
		v, ok := hexVal(c)
		if !ok {
			return nil, fmt.Errorf("fitz: asciihex: bad digit %q", c)
		}
		if have {
			out = append(out, hi<<4|v)
			have = false
		} else {
			hi = v
			have = true
		}
	}
	if have {
		out = append(out, hi<<4)
	}
	return out, nil
}

func ascii85Decode(data []byte) ([]byte, error) {
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}
	dec := ascii85.NewDecoder(bytes.NewReader(data))
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("fitz: ascii85: %w", err)
	}
	return out, nil
}

func runLengthDecode(data []byte) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(data) {
		n := data[i]
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			end := i + int(n) + 1
			if end > len(data) {
				return nil, fmt.Errorf("fitz: runlength: truncated literal")
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("fitz: runlength: truncated run")
			}
			c := data[i]
			i++
			for j := 0; j < 257-int(n); j++ {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func lzwDecode(data []byte, parm pdfDict) ([]byte, error) {
	early := int64(1)
	if parm != nil {
		if v, ok := parm.getInt("EarlyChange"); ok {
			early = v
		}
	}
	// PDF defaults to the TIFF code-width schedule, which widens codes
	// one table entry early; EarlyChange=0 selects the plain schedule.
	var r io.ReadCloser
	if early != 0 {
		r = tifflzw.NewReader(bytes.NewReader(data), tifflzw.MSB, 8)
	} else {
		r = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("fitz: lzw: %w", err)
	}
	return out, nil
}

// applyPredictor undoes the PNG/TIFF predictor declared in the decode
// parameters.
func applyPredictor(d *Document, data []byte, parm pdfDict) ([]byte, error) {
	if parm == nil {
		return data, nil
	}
	pred := int64(1)
	if v, ok := parm.getInt("Predictor"); ok {
		pred = v
	} else if r, ok := parm.get("Predictor").(pdfRef); ok {
		if n, ok := objNumber(d.resolve(r)); ok {
			pred = int64(n)
		}
	}
	if pred <= 1 {
		return data, nil
	}
	colors := int64(1)
	if v, ok := parm.getInt("Colors"); ok {
		colors = v
	}
	bpc := int64(8)
	if v, ok := parm.getInt("BitsPerComponent"); ok {
		bpc = v
	}
	columns := int64(1)
	if v, ok := parm.getInt("Columns"); ok {
		columns = v
	}
	bpp := int((colors*bpc + 7) / 8)
	rowLen := int((colors*bpc*columns + 7) / 8)

	if pred == 2 {
		// TIFF horizontal predictor, 8-bit components only.
		if bpc != 8 {
			return nil, fmt.Errorf("fitz: predictor 2 with %d bits unsupported", bpc)
		}
		for r := 0; r+rowLen <= len(data); r += rowLen {
			for i := bpp; i < rowLen; i++ {
				data[r+i] += data[r+i-bpp]
			}
		}
		return data, nil
	}

	// PNG predictors: each row starts with a filter-type byte.
	var out []byte
	prev := make([]byte, rowLen)
	for pos := 0; pos+1+rowLen <= len(data)+rowLen && pos < len(data); pos += 1 + rowLen {
		ft := data[pos]
		end := pos + 1 + rowLen
		if end > len(data) {
			end = len(data)
		}
		row := make([]byte, end-pos-1)
		copy(row, data[pos+1:end])
		for i := range row {
			var left, up, upLeft byte
			if i >= bpp {
				left = row[i-bpp]
			}
			up = prev[i]
			if i >= bpp {
				upLeft = prev[i-bpp]
			}
			switch ft {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("fitz: bad PNG predictor row type %d", ft)
			}
		}
		out = append(out, row...)
		copy(prev, row)
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
