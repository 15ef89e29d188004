//go:build !unix

package mmap

import "os"

// Open always fails on platforms without mapping support; callers fall back
// to positional file reads.
func Open(f *os.File, size int64) (*Map, error) {
	return nil, &Error{Op: "mmap", Err: errUnsupported}
}

// Close is a no-op; nothing is ever mapped on these platforms.
func (m *Map) Close() error {
	return nil
}
