// pdftoppm - PDF to PPM/PNG/TIFF image converter
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/novvoo/go-fitz/pkg/fitz"
)

func main() {
	firstPage := flag.Int("f", 1, "first page to convert")
	lastPage := flag.Int("l", 0, "last page to convert")
	resolution := flag.Float64("r", 150, "resolution in DPI")
	png := flag.Bool("png", false, "generate PNG output")
	tif := flag.Bool("tiff", false, "generate TIFF output")
	userPwd := flag.String("upw", "", "user password")
	version := flag.Bool("v", false, "print version info")
	help := flag.Bool("h", false, "print usage information")
	flag.BoolVar(help, "help", false, "print usage information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdftoppm version 1.0.0\n")
		fmt.Fprintf(os.Stderr, "Copyright 2024 go-fitz authors\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pdftoppm [options] <PDF-file> [<output-root>]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("pdftoppm version 1.0.0")
		fmt.Println("Copyright 2024 go-fitz authors")
		return
	}

	if *help || flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(1)
	}

	path := flag.Arg(0)
	root := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if flag.NArg() == 2 {
		root = flag.Arg(1)
	}

	doc, err := fitz.OpenDocument(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdftoppm: %v\n", err)
		os.Exit(1)
	}
	if doc.NeedsPassword() {
		if !doc.AuthenticatePassword(*userPwd) {
			fmt.Fprintf(os.Stderr, "pdftoppm: incorrect password\n")
			os.Exit(1)
		}
	}

	pages := doc.CountPages()
	if *lastPage < 1 || *lastPage > pages {
		*lastPage = pages
	}
	if *firstPage < 1 {
		*firstPage = 1
	}

	zoom := *resolution / 72
	ctm := fitz.Scale(zoom, zoom)

	for i := *firstPage; i <= *lastPage; i++ {
		page, err := doc.LoadPage(i - 1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pdftoppm: page %d: %v\n", i, err)
			os.Exit(1)
		}
		pix, err := fitz.NewPixmapFromPage(page, ctm, fitz.DeviceRGB, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pdftoppm: page %d: %v\n", i, err)
			os.Exit(1)
		}

		if *png {
			name := fmt.Sprintf("%s-%d.png", root, i)
			if err := pix.SavePNG(name); err != nil {
				fmt.Fprintf(os.Stderr, "pdftoppm: %v\n", err)
				os.Exit(1)
			}
			continue
		}

		if *tif {
			name := fmt.Sprintf("%s-%d.tif", root, i)
			f, err := os.Create(name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "pdftoppm: %v\n", err)
				os.Exit(1)
			}
			err = tiff.Encode(f, pix.Image(), &tiff.Options{Compression: tiff.Deflate})
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "pdftoppm: %v\n", err)
				os.Exit(1)
			}
			continue
		}

		name := fmt.Sprintf("%s-%d.ppm", root, i)
		out, err := fitz.NewOutputWithPath(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pdftoppm: %v\n", err)
			os.Exit(1)
		}
		if err := pix.WritePPM(out); err != nil {
			out.Close()
			fmt.Fprintf(os.Stderr, "pdftoppm: %v\n", err)
			os.Exit(1)
		}
		out.Close()
	}
}
