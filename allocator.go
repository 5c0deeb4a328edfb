package voltkv

// Allocator is the contract shared by the Slab and Mmap allocator
// variants (spec §4.B): turn a size request into an address, and accept
// an (address, size) pair back for release.
type Allocator interface {
	// Allocate returns an address at which size bytes may be written.
	// It never returns 0. Fails with ErrOutOfSpace if the configured
	// limit would be exceeded, or ErrInvalidSize for size == 0.
	Allocate(size uint32) (Address, error)

	// Free releases a prior allocation. Passing an address/size that
	// was not issued together by Allocate is undefined behavior; the
	// store guarantees this never happens (spec §4.B).
	Free(addr Address, size uint32)

	Used() uint64
	Total() uint64
	Available() uint64

	// Close releases every outstanding allocation and the underlying
	// region.
	Close() error
}
