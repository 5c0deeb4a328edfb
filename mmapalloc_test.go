package voltkv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmapAllocatorBumpAndExhaustion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mmap")

	region, existing, err := openMmapRegion(path, 8192, mmapPersistent)
	require.NoError(t, err)
	assert.False(t, existing)
	defer region.Close()

	alloc := NewMmapAllocator(region, HeaderSize)
	addr1, err := alloc.Allocate(100)
	require.NoError(t, err)
	assert.Equal(t, region.Translate(HeaderSize), addr1)

	addr2, err := alloc.Allocate(50)
	require.NoError(t, err)
	assert.Equal(t, region.Translate(HeaderSize+100), addr2)

	assert.Equal(t, uint64(HeaderSize+150), alloc.Used())
	assert.Equal(t, uint64(8192), alloc.Total())

	_, err = alloc.Allocate(uint32(alloc.Available() + 1))
	assert.ErrorIs(t, err, ErrOutOfSpace)
}

func TestMmapAllocatorFreeIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mmap")
	region, _, err := openMmapRegion(path, 8192, mmapPersistent)
	require.NoError(t, err)
	defer region.Close()

	alloc := NewMmapAllocator(region, HeaderSize)
	addr, err := alloc.Allocate(64)
	require.NoError(t, err)
	before := alloc.Used()
	alloc.Free(addr, 64)
	assert.Equal(t, before, alloc.Used(), "mmap allocator never reclaims space on Free")
}

func TestOpenMmapRegionDetectsExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mmap")

	region1, existing1, err := openMmapRegion(path, 8192, mmapPersistent)
	require.NoError(t, err)
	assert.False(t, existing1)
	StoreU32(region1.Base(), 0xCAFEBABE)
	require.NoError(t, region1.Flush())
	require.NoError(t, region1.Close())

	region2, existing2, err := openMmapRegion(path, 8192, mmapPersistent)
	require.NoError(t, err)
	assert.True(t, existing2)
	assert.Equal(t, uint32(0xCAFEBABE), LoadU32(region2.Base()))
	require.NoError(t, region2.Close())
}

func TestOpenMmapRegionTemporaryDeletesOnClose(t *testing.T) {
	region, existing, err := openMmapRegion("", 8192, mmapTemporary)
	require.NoError(t, err)
	assert.False(t, existing)
	path := region.tempKey
	require.NoError(t, region.Close())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
