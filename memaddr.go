package voltkv

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

// This file implements spec §4.A: typed load/store and bulk copy at an
// integer address, plus sequentially consistent load/store and CAS. No
// separate fence operation is provided. All access is bounds-checked by
// the caller, not here — the same unchecked-primitive design the teacher
// uses when it dereferences unsafe.Pointer(&h.slabMap[offset]) directly
// in slab.go/hashindex.go rather than going through a checked accessor.

func ptr(addr Address) unsafe.Pointer { return unsafe.Pointer(uintptr(addr)) }

func LoadU8(addr Address) uint8   { return *(*uint8)(ptr(addr)) }
func StoreU8(addr Address, v uint8) { *(*uint8)(ptr(addr)) = v }

func LoadU16(addr Address) uint16    { return *(*uint16)(ptr(addr)) }
func StoreU16(addr Address, v uint16) { *(*uint16)(ptr(addr)) = v }

func LoadU32(addr Address) uint32    { return *(*uint32)(ptr(addr)) }
func StoreU32(addr Address, v uint32) { *(*uint32)(ptr(addr)) = v }

func LoadU64(addr Address) uint64    { return *(*uint64)(ptr(addr)) }
func StoreU64(addr Address, v uint64) { *(*uint64)(ptr(addr)) = v }

func LoadI8(addr Address) int8    { return *(*int8)(ptr(addr)) }
func StoreI8(addr Address, v int8) { *(*int8)(ptr(addr)) = v }

func LoadI16(addr Address) int16    { return *(*int16)(ptr(addr)) }
func StoreI16(addr Address, v int16) { *(*int16)(ptr(addr)) = v }

func LoadI32(addr Address) int32    { return *(*int32)(ptr(addr)) }
func StoreI32(addr Address, v int32) { *(*int32)(ptr(addr)) = v }

func LoadI64(addr Address) int64    { return *(*int64)(ptr(addr)) }
func StoreI64(addr Address, v int64) { *(*int64)(ptr(addr)) = v }

func LoadF32(addr Address) float32 {
	return math.Float32frombits(LoadU32(addr))
}
func StoreF32(addr Address, v float32) {
	StoreU32(addr, math.Float32bits(v))
}

func LoadF64(addr Address) float64 {
	return math.Float64frombits(LoadU64(addr))
}
func StoreF64(addr Address, v float64) {
	StoreU64(addr, math.Float64bits(v))
}

func LoadBool(addr Address) bool { return LoadU8(addr) != 0 }
func StoreBool(addr Address, v bool) {
	if v {
		StoreU8(addr, 1)
	} else {
		StoreU8(addr, 0)
	}
}

// LoadVolatileI32/64 and StoreVolatileI32/64 give sequentially consistent
// access to a 4- or 8-byte slot at an address.
func LoadVolatileI32(addr Address) int32 {
	return atomic.LoadInt32((*int32)(ptr(addr)))
}
func StoreVolatileI32(addr Address, v int32) {
	atomic.StoreInt32((*int32)(ptr(addr)), v)
}
func LoadVolatileI64(addr Address) int64 {
	return atomic.LoadInt64((*int64)(ptr(addr)))
}
func StoreVolatileI64(addr Address, v int64) {
	atomic.StoreInt64((*int64)(ptr(addr)), v)
}

func CASI32(addr Address, expect, new int32) bool {
	return atomic.CompareAndSwapInt32((*int32)(ptr(addr)), expect, new)
}
func CASI64(addr Address, expect, new int64) bool {
	return atomic.CompareAndSwapInt64((*int64)(ptr(addr)), expect, new)
}

// Copy bulk-transfers n bytes from src to dst, which may be regions of
// the same backing store.
func Copy(src, dst Address, n uint64) {
	if n == 0 {
		return
	}
	srcSlice := unsafe.Slice((*byte)(ptr(src)), n)
	dstSlice := unsafe.Slice((*byte)(ptr(dst)), n)
	copy(dstSlice, srcSlice)
}

// CopyFromBytes copies n bytes starting at srcOff in src into dst.
func CopyFromBytes(src []byte, srcOff uint64, dst Address, n uint64) {
	if n == 0 {
		return
	}
	dstSlice := unsafe.Slice((*byte)(ptr(dst)), n)
	copy(dstSlice, src[srcOff:srcOff+n])
}

// CopyToBytes copies n bytes starting at src into dst at dstOff.
func CopyToBytes(src Address, dst []byte, dstOff uint64, n uint64) {
	if n == 0 {
		return
	}
	srcSlice := unsafe.Slice((*byte)(ptr(src)), n)
	copy(dst[dstOff:dstOff+n], srcSlice)
}

// Fill sets n bytes at addr to b.
func Fill(addr Address, n uint64, b byte) {
	if n == 0 {
		return
	}
	s := unsafe.Slice((*byte)(ptr(addr)), n)
	for i := range s {
		s[i] = b
	}
}

// BufferBase returns the base address of a native-backed buffer, i.e.
// the address of its first byte.
func BufferBase(buf []byte) Address {
	if len(buf) == 0 {
		return 0
	}
	return Address(uintptr(unsafe.Pointer(&buf[0])))
}

// AllocateNative acquires n bytes of system memory against the same
// anonymous-mapping primitive NewOffHeapRegion uses, without wrapping
// it in a Region -- for a caller that wants a raw native buffer rather
// than a managed allocator (spec §4.A).
func AllocateNative(n uint64) (Address, error) {
	if n == 0 {
		return 0, wrap(ErrInvalidSize, fmt.Errorf("size must be > 0"))
	}
	data, err := allocateAnonymous(n)
	if err != nil {
		return 0, wrap(ErrAllocationFailed, err)
	}
	return BufferBase(data), nil
}

// FreeNative releases a block previously returned by AllocateNative or
// ReallocateNative. n must be the size that was allocated.
func FreeNative(addr Address, n uint64) error {
	if addr == 0 || n == 0 {
		return nil
	}
	if err := freeAnonymous(unsafe.Slice((*byte)(ptr(addr)), n)); err != nil {
		return wrap(ErrIOError, err)
	}
	return nil
}

// ReallocateNative grows or shrinks a native allocation. There is no
// in-place growth primitive for an anonymous mapping, so this always
// allocates a fresh block, copies min(oldSize, newSize) bytes over, and
// frees the old block -- the same replace-the-mapping shape as the
// teacher's own doubleSlab (map bigger, keep the data, drop the old
// mapping).
func ReallocateNative(addr Address, oldSize, newSize uint64) (Address, error) {
	newAddr, err := AllocateNative(newSize)
	if err != nil {
		return 0, err
	}
	if addr != 0 && oldSize > 0 {
		n := oldSize
		if newSize < n {
			n = newSize
		}
		Copy(addr, newAddr, n)
		if err := FreeNative(addr, oldSize); err != nil {
			return 0, err
		}
	}
	return newAddr, nil
}
