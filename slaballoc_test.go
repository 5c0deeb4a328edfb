package voltkv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabAllocatorSizeClassRounding(t *testing.T) {
	a, err := NewSlabAllocator(1 << 20)
	require.NoError(t, err)
	defer a.Close()

	addr, err := a.Allocate(10)
	require.NoError(t, err)
	assert.NotEqual(t, Address(0), addr)
	assert.Equal(t, uint64(16), a.Used())
}

func TestSlabAllocatorFreeListReuse(t *testing.T) {
	a, err := NewSlabAllocator(1 << 20)
	require.NoError(t, err)
	defer a.Close()

	addr1, err := a.Allocate(64)
	require.NoError(t, err)
	a.Free(addr1, 64)
	assert.Equal(t, uint64(0), a.Used())

	addr2, err := a.Allocate(64)
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2, "freed block should be reused before bumping further")
}

func TestSlabAllocatorOversizeNeverReused(t *testing.T) {
	a, err := NewSlabAllocator(1 << 20)
	require.NoError(t, err)
	defer a.Close()

	big := uint32(1 << 16)
	addr1, err := a.Allocate(big)
	require.NoError(t, err)
	a.Free(addr1, big)
	assert.Equal(t, uint64(0), a.Used())

	addr2, err := a.Allocate(big)
	require.NoError(t, err)
	assert.NotEqual(t, addr1, addr2, "oversize blocks are bump-allocated and never recycled")
}

func TestSlabAllocatorOutOfSpace(t *testing.T) {
	a, err := NewSlabAllocator(32)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Allocate(16)
	require.NoError(t, err)
	_, err = a.Allocate(16)
	require.NoError(t, err)
	_, err = a.Allocate(16)
	assert.ErrorIs(t, err, ErrOutOfSpace)
}

func TestSlabAllocatorZeroSizeRejected(t *testing.T) {
	a, err := NewSlabAllocator(1 << 20)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Allocate(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestSlabAllocatorConcurrentAllocateFree(t *testing.T) {
	a, err := NewSlabAllocator(4 << 20)
	require.NoError(t, err)
	defer a.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				addr, err := a.Allocate(64)
				if err != nil {
					continue
				}
				a.Free(addr, 64)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(0), a.Used())
}
