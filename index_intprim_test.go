package voltkv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntPrimitiveIndexRejectsSentinelKeys(t *testing.T) {
	idx := NewIntPrimitiveIndex(16)

	_, err := idx.Put(0, 100, 10)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = idx.Put(math.MinInt32, 100, 10)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestIntPrimitiveIndexPutGetRemove(t *testing.T) {
	idx := NewIntPrimitiveIndex(16)

	old, had, err := idx.PutAndGetOld(9, 900, 9)
	require.NoError(t, err)
	assert.False(t, had)
	assert.Equal(t, Address(0), old.Address)

	assert.Equal(t, Address(900), idx.Get(9))
	entry, ok := idx.GetEntry(9)
	require.True(t, ok)
	assert.Equal(t, int32(9), entry.Size)

	removed, had := idx.RemoveAndGet(9)
	assert.True(t, had)
	assert.Equal(t, Address(900), removed.Address)
	assert.False(t, idx.ContainsKey(9))
}

func TestIntPrimitiveIndexSerializeRoundTrip(t *testing.T) {
	idx := NewIntPrimitiveIndex(16)
	base := Address(3000)
	keys := []int32{1, 2, 3, 42, -7}
	for i, k := range keys {
		_, _, err := idx.PutAndGetOld(k, base+Address(i*4), int32(i+1))
		require.NoError(t, err)
	}

	region, err := NewOffHeapRegion(8192)
	require.NoError(t, err)
	defer region.Close()

	written := idx.SerializeWithOffsets(region.Base(), base)
	restored := NewIntPrimitiveIndex(4)
	require.NoError(t, restored.DeserializeWithOffsets(region.Base(), written, base))

	assert.Equal(t, int32(len(keys)), restored.Size())
	for i, k := range keys {
		entry, ok := restored.GetEntry(k)
		require.True(t, ok)
		assert.Equal(t, base+Address(i*4), entry.Address)
	}
}

func TestIntPrimitiveIndexClearWith(t *testing.T) {
	idx := NewIntPrimitiveIndex(16)
	for i := int32(1); i <= 5; i++ {
		_, _, err := idx.PutAndGetOld(i, Address(i*10), i)
		require.NoError(t, err)
	}

	var freedCount int
	idx.ClearWith(func(addr Address, size int32) { freedCount++ })
	assert.Equal(t, 5, freedCount)
	assert.Equal(t, int32(0), idx.Size())
}
