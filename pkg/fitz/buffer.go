package fitz

import "errors"

// ErrNoStorage is returned by Buffer.Storage. Direct access to the
// backing array is not part of the supported API; callers must use
// Extract instead.
var ErrNoStorage = errors.New("fitz: Buffer.Storage() is not available; use Buffer.Extract()")

// Buffer is a growable byte buffer handed across the API boundary, for
// example when extracting embedded streams.
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferFromBytes returns a buffer holding a copy of data.
func NewBufferFromBytes(data []byte) *Buffer {
	b := &Buffer{data: make([]byte, len(data))}
	copy(b.data, data)
	return b
}

// Len returns the number of bytes currently stored.
func (b *Buffer) Len() int { return len(b.data) }

// Write appends data to the buffer. It never fails; the error return
// satisfies io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Extract removes and returns the buffer contents, leaving the buffer
// empty.
func (b *Buffer) Extract() []byte {
	data := b.data
	b.data = nil
	return data
}

// Storage would expose the backing array and its capacity. It always
// fails with ErrNoStorage.
func (b *Buffer) Storage() ([]byte, int, error) {
	return nil, 0, ErrNoStorage
}
