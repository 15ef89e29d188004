package lime

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// LiME record header layout. Every captured RAM range is preceded by a fixed
// 32-byte header, little-endian:
// magic (4) + version (4) + s_addr (8) + e_addr (8) + reserved (8)
const (
	// Magic is the LiME sentinel 0x4C694D45, stored little-endian so the
	// file starts with the bytes "EMiL".
	Magic uint32 = 0x4C694D45

	// Version1 is the only recognized format version. Version 2 marks a
	// deflate-compressed payload, which this reader does not support.
	Version1 uint32 = 1

	// HeaderSize is the encoded header size in bytes.
	HeaderSize = 32
)

// Errors reported while decoding headers, building the region index and
// serving reads. Wrapped values carry the offending address or offset; match
// with errors.Is.
var (
	ErrInvalidMagic       = errors.New("invalid LiME magic")
	ErrUnsupportedVersion = errors.New("unsupported LiME version")
	ErrBadRange           = errors.New("header end address precedes start address")
	ErrTruncated          = errors.New("truncated dump file")
	ErrUnsorted           = errors.New("regions out of ascending physical order")
	ErrOverlap            = errors.New("overlapping regions")
	ErrUnmapped           = errors.New("physical address not mapped")
	ErrIO                 = errors.New("dump file read failed")
)

// Header is one decoded LiME record header. Start and End are inclusive
// physical addresses.
type Header struct {
	Version  uint32
	Start    uint64
	End      uint64
	Reserved [8]byte
}

// PayloadLen returns the number of payload bytes following the header.
func (h Header) PayloadLen() uint64 {
	return h.End - h.Start + 1
}

// DecodeHeader decodes and validates a header from the first HeaderSize
// bytes of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d header bytes, need %d", ErrTruncated, len(b), HeaderSize)
	}
	if magic := binary.LittleEndian.Uint32(b[0:4]); magic != Magic {
		return Header{}, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, magic)
	}

	var h Header
	h.Version = binary.LittleEndian.Uint32(b[4:8])
	if h.Version != Version1 {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	h.Start = binary.LittleEndian.Uint64(b[8:16])
	h.End = binary.LittleEndian.Uint64(b[16:24])
	copy(h.Reserved[:], b[24:32])

	if h.End < h.Start {
		return Header{}, fmt.Errorf("%w: [0x%x, 0x%x]", ErrBadRange, h.Start, h.End)
	}
	return h, nil
}

// EncodeHeader encodes h into a fresh HeaderSize byte slice. The runtime
// read path never writes headers; this exists to build dump fixtures.
func EncodeHeader(h Header) []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], Magic)
	binary.LittleEndian.PutUint32(b[4:8], h.Version)
	binary.LittleEndian.PutUint64(b[8:16], h.Start)
	binary.LittleEndian.PutUint64(b[16:24], h.End)
	copy(b[24:32], h.Reserved[:])
	return b
}
