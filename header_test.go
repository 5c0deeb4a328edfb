package voltkv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mmap")
	region, _, err := openMmapRegion(path, 8192, mmapPersistent)
	require.NoError(t, err)
	defer region.Close()

	h := &Header{
		IndexType:     IndexTypeSegmented,
		EntryCount:    42,
		CurrentOffset: 5000,
		IndexOffset:   4096,
		IndexSize:     900,
	}
	require.NoError(t, writeHeader(region, h))

	got, err := readHeader(region)
	require.NoError(t, err)
	assert.Equal(t, h.IndexType, got.IndexType)
	assert.Equal(t, h.EntryCount, got.EntryCount)
	assert.Equal(t, h.CurrentOffset, got.CurrentOffset)
	assert.Equal(t, h.IndexOffset, got.IndexOffset)
	assert.Equal(t, h.IndexSize, got.IndexSize)
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mmap")
	region, _, err := openMmapRegion(path, 8192, mmapPersistent)
	require.NoError(t, err)
	defer region.Close()

	StoreU32(region.Base(), 0xDEADBEEF)
	StoreU32(region.Base()+4, headerVersion)

	_, err = readHeader(region)
	assert.ErrorIs(t, err, ErrIncompatibleFile)
}

func TestHeaderRejectsBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mmap")
	region, _, err := openMmapRegion(path, 8192, mmapPersistent)
	require.NoError(t, err)
	defer region.Close()

	StoreU32(region.Base(), headerMagic)
	StoreU32(region.Base()+4, 99)

	_, err = readHeader(region)
	assert.ErrorIs(t, err, ErrIncompatibleFile)
}
