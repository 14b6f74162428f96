package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/novvoo/go-fitz/pkg/fitz"
)

var (
	firstPage int
	lastPage  int
	nopgbrk   bool
	userPw    string
	printHelp bool
	printVer  bool
)

func init() {
	flag.IntVar(&firstPage, "f", 1, "first page to convert")
	flag.IntVar(&lastPage, "l", 0, "last page to convert")
	flag.BoolVar(&nopgbrk, "nopgbrk", false, "don't insert a page break between pages")
	flag.StringVar(&userPw, "upw", "", "user password")
	flag.BoolVar(&printHelp, "h", false, "print usage information")
	flag.BoolVar(&printHelp, "help", false, "print usage information")
	flag.BoolVar(&printVer, "v", false, "print version info")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdftotext version 1.0.0\n")
		fmt.Fprintf(os.Stderr, "Copyright 2024 go-fitz authors\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pdftotext [options] <PDF-file> [<text-file>]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  -f <int>          : first page to convert\n")
		fmt.Fprintf(os.Stderr, "  -l <int>          : last page to convert\n")
		fmt.Fprintf(os.Stderr, "  -nopgbrk          : don't insert a page break between pages\n")
		fmt.Fprintf(os.Stderr, "  -upw <string>     : user password\n")
		fmt.Fprintf(os.Stderr, "  -v                : print version info\n")
		fmt.Fprintf(os.Stderr, "  -h, -help         : print usage information\n")
	}
}

func main() {
	flag.Parse()

	if printVer {
		fmt.Fprintf(os.Stderr, "pdftotext version 1.0.0\n")
		os.Exit(0)
	}
	if printHelp || flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(1)
	}

	doc, err := fitz.OpenDocument(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdftotext: %v\n", err)
		os.Exit(1)
	}
	if doc.NeedsPassword() {
		if !doc.AuthenticatePassword(userPw) {
			fmt.Fprintf(os.Stderr, "pdftotext: incorrect password\n")
			os.Exit(1)
		}
	}

	out := fitz.Stdout()
	if flag.NArg() == 2 {
		out, err = fitz.NewOutputWithPath(flag.Arg(1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "pdftotext: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	pages := doc.CountPages()
	if lastPage < 1 || lastPage > pages {
		lastPage = pages
	}
	if firstPage < 1 {
		firstPage = 1
	}

	for i := firstPage; i <= lastPage; i++ {
		tp, err := fitz.NewStextPageFromDocument(doc, i-1, fitz.StextOptions{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "pdftotext: page %d: %v\n", i, err)
			os.Exit(1)
		}
		fmt.Fprint(out, tp.Text())
		if !nopgbrk && i < lastPage {
			fmt.Fprint(out, "\f")
		}
	}
}
