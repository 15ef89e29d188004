//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// Open maps size bytes of f read-only.
func Open(f *os.File, size int64) (*Map, error) {
	if size <= 0 {
		return nil, &Error{Op: "mmap", Err: errEmpty}
	}
	if size != int64(int(size)) {
		return nil, &Error{Op: "mmap", Err: errTooLarge}
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, &Error{Op: "mmap", Err: err}
	}
	return &Map{data: data}, nil
}

// Close unmaps the file. Safe to call more than once.
func (m *Map) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if err := unix.Munmap(data); err != nil {
		return &Error{Op: "munmap", Err: err}
	}
	return nil
}
