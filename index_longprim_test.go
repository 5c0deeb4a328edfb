package voltkv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLongPrimitiveIndexRejectsSentinelKeys(t *testing.T) {
	idx := NewLongPrimitiveIndex(16)

	_, err := idx.Put(0, 100, 10)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = idx.Put(math.MinInt64, 100, 10)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLongPrimitiveIndexPutGetRemove(t *testing.T) {
	idx := NewLongPrimitiveIndex(16)

	old, had, err := idx.PutAndGetOld(7, 1000, 40)
	require.NoError(t, err)
	assert.False(t, had)
	assert.Equal(t, Address(0), old.Address)

	assert.Equal(t, Address(1000), idx.Get(7))
	entry, ok := idx.GetEntry(7)
	require.True(t, ok)
	assert.Equal(t, int32(40), entry.Size)

	old, had, err = idx.PutAndGetOld(7, 2000, 80)
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, Address(1000), old.Address)

	removed, had := idx.RemoveAndGet(7)
	assert.True(t, had)
	assert.Equal(t, Address(2000), removed.Address)
	assert.False(t, idx.ContainsKey(7))
}

func TestLongPrimitiveIndexResizesAtLoadFactor(t *testing.T) {
	idx := NewLongPrimitiveIndex(16)
	initialCap := len(idx.keys)

	for i := int64(1); i <= 13; i++ {
		_, _, err := idx.PutAndGetOld(i, Address(i), int32(i))
		require.NoError(t, err)
	}

	assert.Greater(t, len(idx.keys), initialCap, "table should have grown past 0.75 load factor")
	assert.Equal(t, int32(13), idx.Size())
	for i := int64(1); i <= 13; i++ {
		assert.True(t, idx.ContainsKey(i))
	}
}

func TestLongPrimitiveIndexTombstoneReuse(t *testing.T) {
	idx := NewLongPrimitiveIndex(16)
	_, _, err := idx.PutAndGetOld(1, 10, 1)
	require.NoError(t, err)
	_, had := idx.RemoveAndGet(1)
	require.True(t, had)

	_, _, err = idx.PutAndGetOld(2, 20, 2)
	require.NoError(t, err)
	assert.True(t, idx.ContainsKey(2))
	assert.False(t, idx.ContainsKey(1))
}

func TestLongPrimitiveIndexSerializeRoundTrip(t *testing.T) {
	idx := NewLongPrimitiveIndex(16)
	base := Address(5000)
	keys := []int64{1, 2, 3, 100, -50}
	for i, k := range keys {
		_, _, err := idx.PutAndGetOld(k, base+Address(i*8), int32(i+1))
		require.NoError(t, err)
	}

	region, err := NewOffHeapRegion(8192)
	require.NoError(t, err)
	defer region.Close()

	written := idx.SerializeWithOffsets(region.Base(), base)
	assert.Equal(t, idx.SerializedSize(), written)

	restored := NewLongPrimitiveIndex(4)
	require.NoError(t, restored.DeserializeWithOffsets(region.Base(), written, base))

	assert.Equal(t, int32(len(keys)), restored.Size())
	for i, k := range keys {
		entry, ok := restored.GetEntry(k)
		require.True(t, ok)
		assert.Equal(t, base+Address(i*8), entry.Address)
		assert.Equal(t, int32(i+1), entry.Size)
	}
}
