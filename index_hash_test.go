package voltkv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIndexPutGetRemove(t *testing.T) {
	idx := NewHashIndex[string](StringKeyCodec{})

	old, had, err := idx.PutAndGetOld("a", 100, 10)
	require.NoError(t, err)
	assert.False(t, had)
	assert.Equal(t, Address(0), old.Address)

	assert.Equal(t, Address(100), idx.Get("a"))
	assert.Equal(t, int32(10), idx.GetSize("a"))
	assert.True(t, idx.ContainsKey("a"))
	assert.Equal(t, int32(1), idx.Size())

	old, had, err = idx.PutAndGetOld("a", 200, 20)
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, Address(100), old.Address)
	assert.Equal(t, int32(10), old.Size)

	removed, had := idx.RemoveAndGet("a")
	assert.True(t, had)
	assert.Equal(t, Address(200), removed.Address)
	assert.False(t, idx.ContainsKey("a"))
	assert.Equal(t, int32(0), idx.Size())
}

func TestHashIndexGetEntryAtomicPair(t *testing.T) {
	idx := NewHashIndex[string](StringKeyCodec{})
	_, _, err := idx.PutAndGetOld("k", 42, 7)
	require.NoError(t, err)

	entry, ok := idx.GetEntry("k")
	assert.True(t, ok)
	assert.Equal(t, Address(42), entry.Address)
	assert.Equal(t, int32(7), entry.Size)

	_, ok = idx.GetEntry("missing")
	assert.False(t, ok)
}

func TestHashIndexClearWithFreesEveryEntry(t *testing.T) {
	idx := NewHashIndex[string](StringKeyCodec{})
	for i, k := range []string{"a", "b", "c"} {
		_, _, err := idx.PutAndGetOld(k, Address(100+i), int32(i+1))
		require.NoError(t, err)
	}

	freed := make(map[Address]int32)
	idx.ClearWith(func(addr Address, size int32) { freed[addr] = size })

	assert.Len(t, freed, 3)
	assert.Equal(t, int32(0), idx.Size())
	assert.False(t, idx.ContainsKey("a"))
}

func TestHashIndexSerializeRoundTrip(t *testing.T) {
	idx := NewHashIndex[string](StringKeyCodec{})
	base := Address(1000)
	for i, k := range []string{"alpha", "beta", "gamma"} {
		_, _, err := idx.PutAndGetOld(k, base+Address(i*10), int32(i+1))
		require.NoError(t, err)
	}

	region, err := NewOffHeapRegion(4096)
	require.NoError(t, err)
	defer region.Close()

	size := idx.SerializedSize()
	written := idx.SerializeWithOffsets(region.Base(), base)
	assert.Equal(t, size, written)

	restored := NewHashIndex[string](StringKeyCodec{})
	require.NoError(t, restored.DeserializeWithOffsets(region.Base(), written, base))

	assert.Equal(t, int32(3), restored.Size())
	for i, k := range []string{"alpha", "beta", "gamma"} {
		entry, ok := restored.GetEntry(k)
		require.True(t, ok)
		assert.Equal(t, base+Address(i*10), entry.Address)
		assert.Equal(t, int32(i+1), entry.Size)
	}
}

func TestHashIndexConcurrentDistinctKeys(t *testing.T) {
	idx := NewHashIndex[int64](nil) // codec unused by Put/Get path

	var wg sync.WaitGroup
	for i := int64(0); i < 100; i++ {
		wg.Add(1)
		go func(k int64) {
			defer wg.Done()
			_, _, err := idx.PutAndGetOld(k, Address(k), int32(k))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(100), idx.Size())
}
