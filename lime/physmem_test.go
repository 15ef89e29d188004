package lime

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestPhysMem(t *testing.T, recs ...testRegion) (*PhysMem, []byte) {
	t.Helper()
	data := buildDump(t, recs...)
	regions, err := ScanRegions(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ScanRegions: %v", err)
	}
	idx, err := NewRegionIndex(regions)
	if err != nil {
		t.Fatalf("NewRegionIndex: %v", err)
	}
	return NewPhysMem(bytes.NewReader(data), idx), data
}

func TestReadWholeRegionMatchesFileBytes(t *testing.T) {
	mem, data := newTestPhysMem(t, testRegion{start: 0x1000, end: 0x1FFF, fill: 0x10})

	got := make([]byte, 0x1000)
	if err := mem.Read(0x1000, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, data[HeaderSize:HeaderSize+0x1000]) {
		t.Error("region read does not match raw file payload")
	}
}

// Mirrors the two-window layout an acquisition tool produces for a machine
// with a memory hole: [0x1000, 0x1FFF] and [0x3000, 0x3FFF].
func TestTwoRegionScenario(t *testing.T) {
	mem, data := newTestPhysMem(t,
		testRegion{start: 0x1000, end: 0x1FFF, fill: 0x10},
		testRegion{start: 0x3000, end: 0x3FFF, fill: 0x30},
	)

	got := make([]byte, 4)
	if err := mem.Read(0x1000, got); err != nil {
		t.Fatalf("Read(0x1000, 4): %v", err)
	}
	if !bytes.Equal(got, data[HeaderSize:HeaderSize+4]) {
		t.Errorf("Read(0x1000, 4) = % x, want file bytes % x", got, data[HeaderSize:HeaderSize+4])
	}

	err := mem.Read(0x2000, make([]byte, 1))
	if !errors.Is(err, ErrUnmapped) {
		t.Fatalf("Read(0x2000, 1) error = %v, want %v", err, ErrUnmapped)
	}
	if !strings.Contains(err.Error(), "0x2000") {
		t.Errorf("unmapped error %q does not name the address", err)
	}

	if _, max, _ := mem.Index().Span(); max != 0x3FFF {
		t.Errorf("max address = 0x%x, want 0x3FFF", max)
	}
}

func TestReadSpanningAdjacentRegions(t *testing.T) {
	mem, data := newTestPhysMem(t,
		testRegion{start: 0x1000, end: 0x1FFF, fill: 0xA0},
		testRegion{start: 0x2000, end: 0x2FFF, fill: 0x0B},
	)

	// 4 bytes from the tail of region one, 4 from the head of region two.
	got := make([]byte, 8)
	if err := mem.Read(0x1FFC, got); err != nil {
		t.Fatalf("Read across adjacent boundary: %v", err)
	}

	tail := data[HeaderSize+0xFFC : HeaderSize+0x1000]
	secondPayload := HeaderSize + 0x1000 + HeaderSize
	head := data[secondPayload : secondPayload+4]
	want := append(append([]byte(nil), tail...), head...)
	if !bytes.Equal(got, want) {
		t.Errorf("boundary read = % x, want % x", got, want)
	}
}

func TestReadAcrossGapFails(t *testing.T) {
	mem, _ := newTestPhysMem(t,
		testRegion{start: 0x1000, end: 0x1FFF, fill: 0x10},
		testRegion{start: 0x3000, end: 0x3FFF, fill: 0x30},
	)

	err := mem.Read(0x1FF0, make([]byte, 0x20))
	if !errors.Is(err, ErrUnmapped) {
		t.Fatalf("gap-spanning read error = %v, want %v", err, ErrUnmapped)
	}
	// The error reports the first byte the dump does not cover.
	if !strings.Contains(err.Error(), "0x2000") {
		t.Errorf("gap error %q does not name the first unmapped address", err)
	}
}

func TestReadZeroLength(t *testing.T) {
	mem, _ := newTestPhysMem(t, testRegion{start: 0x1000, end: 0x1FFF, fill: 0x10})

	if err := mem.Read(0x9999, nil); err != nil {
		t.Errorf("zero-length read at unmapped address: %v", err)
	}
	if err := mem.Read(0x1000, []byte{}); err != nil {
		t.Errorf("zero-length read at mapped address: %v", err)
	}
}

func TestReadUnmappedAddress(t *testing.T) {
	mem, _ := newTestPhysMem(t, testRegion{start: 0x1000, end: 0x1FFF, fill: 0x10})

	for _, addr := range []uint64{0x0, 0x0FFF, 0x2000, 0xFFFFFFFF} {
		err := mem.Read(addr, make([]byte, 1))
		if !errors.Is(err, ErrUnmapped) {
			t.Errorf("Read(0x%x) error = %v, want %v", addr, err, ErrUnmapped)
		}
	}
}

type failingReaderAt struct{}

func (failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return 0, errors.New("disk gone")
}

func TestReadIOFailure(t *testing.T) {
	idx, err := NewRegionIndex([]Region{{Start: 0x1000, End: 0x1FFF, FileOffset: HeaderSize}})
	if err != nil {
		t.Fatalf("NewRegionIndex: %v", err)
	}
	mem := NewPhysMem(failingReaderAt{}, idx)

	rerr := mem.Read(0x1000, make([]byte, 4))
	if !errors.Is(rerr, ErrIO) {
		t.Fatalf("Read error = %v, want %v", rerr, ErrIO)
	}
	if !strings.Contains(rerr.Error(), "0x20") {
		t.Errorf("io error %q does not name the failing file offset", rerr)
	}
}
