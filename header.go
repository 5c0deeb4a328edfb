package voltkv

import "fmt"

// IndexType identifies which index variant a persisted mmap file was
// last closed with (spec §4.G header layout).
type IndexType uint32

const (
	IndexTypeHash IndexType = iota
	IndexTypeSegmented
	IndexTypeLongPrim
	IndexTypeIntPrim
)

const (
	headerMagic   uint32 = 0x524D4150 // "RMAP"
	headerVersion uint32 = 1
)

// Header is the 4096-byte file header written only at graceful close and
// validated on every open (spec §4.G / §6.3).
type Header struct {
	IndexType      IndexType
	EntryCount     int32
	CurrentOffset  uint64
	IndexOffset    uint64
	IndexSize      uint64
}

// readHeader reads and validates the header at the start of region. It
// returns ErrIncompatibleFile if the magic or version don't match.
func readHeader(region *Region) (*Header, error) {
	base := region.Base()
	magic := LoadU32(base + 0)
	version := LoadU32(base + 4)
	if magic != headerMagic || version != headerVersion {
		return nil, wrap(ErrIncompatibleFile, fmt.Errorf("bad header: magic=%#x version=%d", magic, version))
	}
	return &Header{
		IndexType:     IndexType(LoadU32(base + 8)),
		EntryCount:    LoadI32(base + 12),
		CurrentOffset: LoadU64(base + 16),
		IndexOffset:   LoadU64(base + 24),
		IndexSize:     LoadU64(base + 32),
	}, nil
}

// writeHeader writes h at the start of region and zeroes the reserved
// tail, per spec §4.G step 4.
func writeHeader(region *Region, h *Header) error {
	if region.Len() < HeaderSize {
		return wrap(ErrIOError, fmt.Errorf("region too small for header: %d bytes", region.Len()))
	}
	base := region.Base()
	StoreU32(base+0, headerMagic)
	StoreU32(base+4, headerVersion)
	StoreU32(base+8, uint32(h.IndexType))
	StoreI32(base+12, h.EntryCount)
	StoreU64(base+16, h.CurrentOffset)
	StoreU64(base+24, h.IndexOffset)
	StoreU64(base+32, h.IndexSize)
	Fill(base+40, HeaderSize-40, 0)
	return nil
}
