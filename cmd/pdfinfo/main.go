package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/novvoo/go-fitz/pkg/fitz"
)

var (
	box          bool
	userPw       string
	printVersion bool
	printHelp    bool
)

func init() {
	flag.BoolVar(&box, "box", false, "print the page bounding boxes")
	flag.StringVar(&userPw, "upw", "", "user password")
	flag.BoolVar(&printVersion, "v", false, "print version info")
	flag.BoolVar(&printHelp, "h", false, "print usage information")
	flag.BoolVar(&printHelp, "help", false, "print usage information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdfinfo version 1.0.0\n")
		fmt.Fprintf(os.Stderr, "Copyright 2024 go-fitz authors\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pdfinfo [options] <PDF-file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  -box              : print the page bounding boxes\n")
		fmt.Fprintf(os.Stderr, "  -upw <string>     : user password\n")
		fmt.Fprintf(os.Stderr, "  -v                : print version info\n")
		fmt.Fprintf(os.Stderr, "  -h, -help         : print usage information\n")
	}
}

var infoKeys = []string{
	"Title", "Subject", "Keywords", "Author", "Creator", "Producer",
	"CreationDate", "ModDate",
}

func main() {
	flag.Parse()

	if printVersion {
		fmt.Fprintf(os.Stderr, "pdfinfo version 1.0.0\n")
		os.Exit(0)
	}
	if printHelp || flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	path := flag.Arg(0)
	doc, err := fitz.OpenDocument(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfinfo: %v\n", err)
		os.Exit(1)
	}

	if doc.NeedsPassword() {
		if !doc.AuthenticatePassword(userPw) {
			fmt.Fprintf(os.Stderr, "pdfinfo: incorrect password\n")
			os.Exit(1)
		}
	}

	for _, key := range infoKeys {
		if v, ok := doc.LookupMetadata("info:" + key); ok && v != "" {
			fmt.Printf("%-16s%s\n", key+":", v)
		}
	}

	pages := doc.CountPages()
	fmt.Printf("%-16s%d\n", "Pages:", pages)

	enc, _ := doc.LookupMetadata("encryption")
	if enc == "" {
		enc = "no"
	}
	fmt.Printf("%-16s%s\n", "Encrypted:", enc)

	if pages > 0 {
		page, err := doc.LoadPage(0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pdfinfo: %v\n", err)
			os.Exit(1)
		}
		b := page.Bound()
		fmt.Printf("%-16s%g x %g pts\n", "Page size:", b.Width(), b.Height())
		fmt.Printf("%-16s%d\n", "Page rot:", page.Rotate())
	}

	format, _ := doc.LookupMetadata("format")
	fmt.Printf("%-16s%s\n", "Format:", format)

	if box {
		for i := 0; i < pages; i++ {
			page, err := doc.LoadPage(i)
			if err != nil {
				fmt.Fprintf(os.Stderr, "pdfinfo: %v\n", err)
				os.Exit(1)
			}
			m := page.MediaBox()
			c := page.CropBox()
			fmt.Printf("Page %4d MediaBox: %8.2f %8.2f %8.2f %8.2f\n", i+1, m.X0, m.Y0, m.X1, m.Y1)
			fmt.Printf("Page %4d CropBox:  %8.2f %8.2f %8.2f %8.2f\n", i+1, c.X0, c.Y0, c.X1, c.Y1)
		}
	}
}
