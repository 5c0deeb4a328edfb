package voltkv

import (
	"fmt"
	"os"
	"unsafe"

	mmapgo "github.com/edsrzf/mmap-go"
)

// Address is an integer that, interpreted against the process address
// space, names a byte position at which encoded value data begins.
// Address 0 is reserved and never returned by an allocator (spec §3).
type Address uint64

// segmentSize is the build-time constant bounding a single mapping; a
// region backed by a file larger than this is split into fixed-size
// segments (spec §3). 1GiB keeps segment count small on typical files
// while staying well inside every host's single-mmap limit.
const segmentSize = 1 << 30

// segment is one contiguously mapped span of a region.
type segment struct {
	data []byte
	base uintptr
}

func newSegment(data []byte) segment {
	var base uintptr
	if len(data) > 0 {
		base = uintptr(unsafe.Pointer(&data[0]))
	}
	return segment{data: data, base: base}
}

// Region is the contiguous byte-addressable span backing all value
// storage in a store: either anonymous native memory (OffHeap) or a
// sequence of memory-mapped file segments (Mmap). Addresses inside a
// region are region.Base()+offset for offset in [0, region.Len()).
type Region struct {
	segments []segment
	length   uint64

	// mmap-only fields, nil/zero for an OffHeap region.
	file    *os.File
	mapped  []mmapgo.MMap
	temp    bool
	tempKey string
}

// Base returns the address of byte 0 of the region (segment 0's base).
func (r *Region) Base() Address {
	if len(r.segments) == 0 {
		return 0
	}
	return Address(r.segments[0].base)
}

// Len reports the total addressable length of the region in bytes.
func (r *Region) Len() uint64 { return r.length }

// Translate maps a region-relative offset to a process address, routing
// through the segment table for regions spanning more than one mapping.
func (r *Region) Translate(offset uint64) Address {
	idx := offset / segmentSize
	intra := offset % segmentSize
	return Address(r.segments[idx].base) + Address(intra)
}

// NewOffHeapRegion acquires size bytes of anonymous, GC-untracked memory.
// On unix hosts this is a real anonymous mmap so the bytes are truly off
// the managed heap; elsewhere it falls back to a pinned byte slice, which is
// still never scanned as pointer data but is nominally heap-backed.
func NewOffHeapRegion(size uint64) (*Region, error) {
	if size == 0 {
		return nil, wrap(ErrInvalidSize, fmt.Errorf("region size must be > 0"))
	}
	segCount := (size + segmentSize - 1) / segmentSize
	segs := make([]segment, 0, segCount)
	remaining := size
	for remaining > 0 {
		n := remaining
		if n > segmentSize {
			n = segmentSize
		}
		data, err := allocateAnonymous(n)
		if err != nil {
			return nil, wrap(ErrAllocationFailed, err)
		}
		segs = append(segs, newSegment(data))
		remaining -= n
	}
	return &Region{segments: segs, length: size}, nil
}

// Close releases the region. An OffHeap region's memory is freed; an
// Mmap region is handed to closeMmap, which unmaps every segment, closes
// the file handle and, for a temporary file, removes it.
func (r *Region) Close() error {
	if r.file != nil {
		return r.closeMmap()
	}
	for _, s := range r.segments {
		if err := freeAnonymous(s.data); err != nil {
			return wrap(ErrIOError, err)
		}
	}
	r.segments = nil
	return nil
}

// Flush forces every mapped segment to durable storage. No-op for an
// OffHeap region.
func (r *Region) Flush() error {
	for _, m := range r.mapped {
		if err := m.Flush(); err != nil {
			return wrap(ErrIOError, err)
		}
	}
	return nil
}

func (r *Region) closeMmap() error {
	var firstErr error
	for _, m := range r.mapped {
		if err := m.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if r.temp {
			_ = os.Remove(r.tempKey)
		}
	}
	if firstErr != nil {
		return wrap(ErrIOError, firstErr)
	}
	return nil
}
