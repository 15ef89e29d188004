package lime

import (
	"fmt"
	"io"
	"math"
)

// PhysMem translates physical address reads into positional reads inside the
// dump file. A request spanning several regions is served piecewise as long
// as the regions are physically adjacent; a request touching any unmapped
// byte fails as a whole. There is no zero fill and no silent truncation
// across a gap. Callers needing gap-tolerant scatter reads should walk
// Index().Regions() and issue per-region requests.
//
// PhysMem holds only the immutable index and an io.ReaderAt; reads are pure
// functions of (addr, len(p)) and may run concurrently.
type PhysMem struct {
	src io.ReaderAt
	idx *RegionIndex
}

// NewPhysMem creates a resolver over src using the completed index.
func NewPhysMem(src io.ReaderAt, idx *RegionIndex) *PhysMem {
	return &PhysMem{src: src, idx: idx}
}

// Index returns the region index backing this resolver.
func (m *PhysMem) Index() *RegionIndex {
	return m.idx
}

// Read fills p with dump contents starting at physical address addr. It
// either fills p completely or returns an error. Zero-length reads succeed
// trivially.
func (m *PhysMem) Read(addr uint64, p []byte) error {
	for len(p) > 0 {
		reg, ok := m.idx.Lookup(addr)
		if !ok {
			return fmt.Errorf("%w: 0x%x", ErrUnmapped, addr)
		}

		n := uint64(len(p))
		if avail := reg.End - addr + 1; avail < n {
			n = avail
		}
		off := reg.FileOffset + int64(addr-reg.Start)
		if _, err := m.src.ReadAt(p[:n], off); err != nil {
			return fmt.Errorf("%w: %d bytes at file offset 0x%x: %v", ErrIO, n, off, err)
		}

		p = p[n:]
		if len(p) > 0 && reg.End == math.MaxUint64 {
			// The remainder would wrap around the address space.
			return fmt.Errorf("%w: read past top of physical address space", ErrUnmapped)
		}
		addr += n
	}
	return nil
}
