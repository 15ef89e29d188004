// Package lime reads LiME physical memory dumps and exposes them as a
// randomly-addressable physical address space.
//
// A dump is a concatenation of {header}{payload} records with no padding,
// terminating exactly at end-of-file. Open parses every header up front and
// builds an immutable region index; reads then map physical addresses onto
// file offsets through the index.
package lime

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"limeconn/internal/mmap"
)

// Dump is an open LiME dump: the file handle, an optional read-only memory
// mapping and the completed region index. A Dump is immutable after Open and
// safe for concurrent reads; Close must not race with in-flight reads.
type Dump struct {
	file *os.File
	m    *mmap.Map // nil when mapping is disabled or unavailable
	mem  *PhysMem
	idx  *RegionIndex
}

type options struct {
	log    *zap.Logger
	noMmap bool
}

// Option configures Open.
type Option func(*options)

// WithLogger attaches a logger for open-time diagnostics. Open never logs on
// the read path.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithoutMmap forces positional file reads instead of a memory mapping.
func WithoutMmap() Option {
	return func(o *options) {
		o.noMmap = true
	}
}

// Open opens a dump file, scans every record header and builds the region
// index. Any structural defect (bad magic, unsupported version, truncation,
// unsorted or overlapping regions) aborts the open entirely; there is no
// partial-open mode, since an inconsistent index would corrupt every later
// read.
func Open(path string, opts ...Option) (*Dump, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	size := info.Size()

	d := &Dump{file: f}
	var src io.ReaderAt = f
	if !o.noMmap && size > 0 {
		if m, err := mmap.Open(f, size); err == nil {
			d.m = m
			src = m
		} else {
			o.log.Debug("mmap unavailable, using positional file reads", zap.Error(err))
		}
	}

	regions, err := ScanRegions(src, size)
	if err != nil {
		d.Close()
		return nil, err
	}
	idx, err := NewRegionIndex(regions)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.idx = idx
	d.mem = NewPhysMem(src, idx)

	if min, max, ok := idx.Span(); ok {
		o.log.Debug("dump opened",
			zap.String("path", path),
			zap.Int("regions", idx.Count()),
			zap.Uint64("min_addr", min),
			zap.Uint64("max_addr", max))
	}
	return d, nil
}

// Read fills p with dump contents starting at physical address addr. See
// PhysMem.Read for the boundary and gap semantics.
func (d *Dump) Read(addr uint64, p []byte) error {
	return d.mem.Read(addr, p)
}

// Index returns the region index built at open time.
func (d *Dump) Index() *RegionIndex {
	return d.idx
}

// Regions returns a copy of the region table in ascending order.
func (d *Dump) Regions() []Region {
	return d.idx.Regions()
}

// MinAddr returns the lowest mapped physical address, 0 for an empty dump.
func (d *Dump) MinAddr() uint64 {
	min, _, _ := d.idx.Span()
	return min
}

// MaxAddr returns the highest mapped physical address, 0 for an empty dump.
func (d *Dump) MaxAddr() uint64 {
	_, max, _ := d.idx.Span()
	return max
}

// Close releases the mapping and the underlying file. Reads issued after
// Close fail.
func (d *Dump) Close() error {
	var first error
	if d.m != nil {
		if err := d.m.Close(); err != nil {
			first = err
		}
		d.m = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil && first == nil {
			first = err
		}
		d.file = nil
	}
	return first
}
