package fitz

import (
	"io"
	"os"
)

// Output is a write sink handed across the API, wrapping either a
// file, an arbitrary io.Writer, or one of the fixed process streams.
type Output struct {
	w     io.Writer
	c     io.Closer
	fixed string
}

// Stdout returns the fixed output writing to standard output.
func Stdout() *Output {
	return &Output{w: os.Stdout, fixed: "stdout"}
}

// Stderr returns the fixed output writing to standard error.
func Stderr() *Output {
	return &Output{w: os.Stderr, fixed: "stderr"}
}

// NewOutputWithPath returns an output writing to the named file.
func NewOutputWithPath(path string) (*Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Output{w: f, c: f}, nil
}

// NewOutputWithWriter wraps an io.Writer.
func NewOutputWithWriter(w io.Writer) *Output {
	return &Output{w: w}
}

// State names the fixed stream this output wraps, or "file" otherwise.
func (o *Output) State() string {
	if o.fixed != "" {
		return o.fixed
	}
	return "file"
}

func (o *Output) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Close closes the underlying file, if the output owns one. The fixed
// streams are never closed.
func (o *Output) Close() error {
	if o.c != nil {
		return o.c.Close()
	}
	return nil
}
