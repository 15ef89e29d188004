// Package mmap provides a read-only memory mapping over an open file, with a
// clean failure on platforms without mapping support so callers can fall
// back to positional file reads.
package mmap

import (
	"errors"
	"fmt"
	"io"
)

var (
	errEmpty       = errors.New("empty file")
	errTooLarge    = errors.New("file exceeds addressable mapping size")
	errUnsupported = errors.New("not supported on this platform")
)

// Error wraps a mapping failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "mmap: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Map is a read-only mapping of a file.
type Map struct {
	data []byte
}

// Data returns the mapped byte slice.
func (m *Map) Data() []byte {
	return m.data
}

// Size returns the mapped length in bytes.
func (m *Map) Size() int64 {
	return int64(len(m.data))
}

// ReadAt implements io.ReaderAt over the mapped bytes.
func (m *Map) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, &Error{Op: "readat", Err: fmt.Errorf("offset %d out of range", off)}
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
