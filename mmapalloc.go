package voltkv

import (
	"fmt"
	"sync/atomic"
)

// HeaderSize is the fixed byte length of the mmap file header (spec
// §4.G); the bump allocator's offset starts here on a fresh file.
const HeaderSize = 4096

// MmapAllocator is a monotonic bump allocator over an mmap Region (spec
// §4.B.2). Free is a no-op: space is reclaimed only by compaction, which
// is out of scope, so update churn grows the file.
type MmapAllocator struct {
	region *Region
	offset atomic.Uint64
}

// NewMmapAllocator wraps region with a bump allocator starting at
// startOffset (HeaderSize for a fresh file, or the value restored from
// the file's header on reopen).
func NewMmapAllocator(region *Region, startOffset uint64) *MmapAllocator {
	a := &MmapAllocator{region: region}
	a.offset.Store(startOffset)
	return a
}

func (a *MmapAllocator) Allocate(size uint32) (Address, error) {
	if size == 0 {
		return 0, wrap(ErrInvalidSize, fmt.Errorf("size must be > 0"))
	}
	for {
		old := a.offset.Load()
		next := old + uint64(size)
		if next > a.region.Len() {
			return 0, wrap(ErrOutOfSpace, fmt.Errorf("file exhausted: need %d, have %d remaining", size, a.region.Len()-old))
		}
		if a.offset.CompareAndSwap(old, next) {
			return a.region.Translate(old), nil
		}
	}
}

// Free is a no-op for the mmap allocator (spec §4.B.2).
func (a *MmapAllocator) Free(addr Address, size uint32) {}

// CurrentOffset returns the end of the data region, i.e. the next
// address that would be handed out. The store's graceful close persists
// this value as the header's current_offset field.
func (a *MmapAllocator) CurrentOffset() uint64 { return a.offset.Load() }

func (a *MmapAllocator) Used() uint64      { return a.offset.Load() }
func (a *MmapAllocator) Total() uint64     { return a.region.Len() }
func (a *MmapAllocator) Available() uint64 { return a.region.Len() - a.offset.Load() }

func (a *MmapAllocator) Close() error { return a.region.Close() }
