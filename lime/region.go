package lime

import (
	"fmt"
	"io"
	"sort"
)

// Region is one contiguous physical address range whose bytes are fully
// present in the dump file. Start and End are inclusive; FileOffset is the
// byte offset in the dump where the region's payload begins.
type Region struct {
	Start      uint64
	End        uint64
	FileOffset int64
}

// Len returns the region length in bytes.
func (r Region) Len() uint64 {
	return r.End - r.Start + 1
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr uint64) bool {
	return addr >= r.Start && addr <= r.End
}

// ScanRegions walks a dump file from offset 0, decoding the header of each
// record and skipping over its payload, until the cursor lands exactly on
// end-of-file. Only headers are read; payload bytes stay on disk until a
// read request asks for them.
func ScanRegions(r io.ReaderAt, size int64) ([]Region, error) {
	var regions []Region
	buf := make([]byte, HeaderSize)

	var cur int64
	for cur < size {
		if size-cur < HeaderSize {
			return nil, fmt.Errorf("%w: %d trailing bytes at offset 0x%x", ErrTruncated, size-cur, cur)
		}
		if _, err := r.ReadAt(buf, cur); err != nil {
			return nil, fmt.Errorf("%w: header at offset 0x%x: %v", ErrIO, cur, err)
		}
		h, err := DecodeHeader(buf)
		if err != nil {
			return nil, fmt.Errorf("record at offset 0x%x: %w", cur, err)
		}

		payload := h.PayloadLen()
		// Start == 0 with End == max wraps PayloadLen to zero and would stall
		// the cursor; no file can hold that region anyway.
		if payload == 0 {
			return nil, fmt.Errorf("%w: region at offset 0x%x spans the whole address space", ErrBadRange, cur)
		}
		if payload > uint64(size-cur-HeaderSize) {
			return nil, fmt.Errorf("%w: %d byte payload at offset 0x%x runs past end of file", ErrTruncated, payload, cur+HeaderSize)
		}

		regions = append(regions, Region{
			Start:      h.Start,
			End:        h.End,
			FileOffset: cur + HeaderSize,
		})
		cur += HeaderSize + int64(payload)
	}
	return regions, nil
}

// RegionIndex is the ordered table of regions backing physical address
// lookups. It is built once when a dump is opened and never mutated, so it
// may be shared across concurrent readers without locking.
type RegionIndex struct {
	regions []Region
}

// NewRegionIndex validates that regions arrive in strictly ascending,
// non-overlapping physical order and builds the index. The acquisition tool
// writes ranges in ascending order; out-of-order input is rejected rather
// than silently re-sorted so acquisition bugs surface instead of being
// masked. The unsorted check runs before the overlap check so a descending
// sequence is reported as unsorted, not as a misleading overlap.
func NewRegionIndex(regions []Region) (*RegionIndex, error) {
	for i := 1; i < len(regions); i++ {
		prev, cur := regions[i-1], regions[i]
		if cur.Start <= prev.Start {
			return nil, fmt.Errorf("%w: region %d starts at 0x%x, after region %d at 0x%x",
				ErrUnsorted, i, cur.Start, i-1, prev.Start)
		}
		if cur.Start <= prev.End {
			return nil, fmt.Errorf("%w: region %d [0x%x, 0x%x] intersects region %d [0x%x, 0x%x]",
				ErrOverlap, i, cur.Start, cur.End, i-1, prev.Start, prev.End)
		}
	}

	idx := &RegionIndex{regions: make([]Region, len(regions))}
	copy(idx.regions, regions)
	return idx, nil
}

// Lookup returns the region containing addr. Binary search over Start,
// confirmed against the inclusive End of the candidate.
func (x *RegionIndex) Lookup(addr uint64) (Region, bool) {
	i := sort.Search(len(x.regions), func(i int) bool {
		return x.regions[i].Start > addr
	})
	if i == 0 {
		return Region{}, false
	}
	r := x.regions[i-1]
	if addr > r.End {
		return Region{}, false
	}
	return r, true
}

// Count returns the number of regions in the index.
func (x *RegionIndex) Count() int {
	return len(x.regions)
}

// Span returns the lowest and highest mapped physical addresses. ok is false
// when the dump holds no regions.
func (x *RegionIndex) Span() (min, max uint64, ok bool) {
	if len(x.regions) == 0 {
		return 0, 0, false
	}
	return x.regions[0].Start, x.regions[len(x.regions)-1].End, true
}

// Regions returns a copy of the region table in ascending order.
func (x *RegionIndex) Regions() []Region {
	out := make([]Region, len(x.regions))
	copy(out, x.regions)
	return out
}
