package voltkv

import "github.com/segmentio/fasthash/fnv1"

// hashBytes hashes an arbitrary byte-slice key so SegmentedHashIndex can
// pick a segment, grounded on the teacher's own hash() in util.go.
// HashIndex does not use it; it relies on the Go map's own hashing.
func hashBytes(b []byte) uint64 {
	return fnv1.HashBytes64(b)
}

// murmurFinalizer64 is the MurmurHash3 64-bit finalizer mix, used by
// LongPrimitiveIndex per spec §3. No pack dependency implements this
// exact bit-mixing, so it is hand-rolled (see DESIGN.md).
func murmurFinalizer64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

// mix32 is a 32-bit avalanche mix (Murmur3's fmix32), used by
// IntPrimitiveIndex per spec §3.
func mix32(k uint32) uint32 {
	k ^= k >> 16
	k *= 0x85ebca6b
	k ^= k >> 13
	k *= 0xc2b2ae35
	k ^= k >> 16
	return k
}
