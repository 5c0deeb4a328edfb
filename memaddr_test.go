package voltkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemaddrPrimitiveRoundTrip(t *testing.T) {
	region, err := NewOffHeapRegion(4096)
	require.NoError(t, err)
	defer region.Close()

	base := region.Base()

	StoreU8(base, 0xAB)
	assert.Equal(t, uint8(0xAB), LoadU8(base))

	StoreI32(base+8, -12345)
	assert.Equal(t, int32(-12345), LoadI32(base+8))

	StoreI64(base+16, -9001)
	assert.Equal(t, int64(-9001), LoadI64(base+16))

	StoreF32(base+32, 3.5)
	assert.Equal(t, float32(3.5), LoadF32(base+32))

	StoreF64(base+40, 2.71828)
	assert.Equal(t, 2.71828, LoadF64(base+40))

	StoreBool(base+48, true)
	assert.True(t, LoadBool(base+48))
	StoreBool(base+48, false)
	assert.False(t, LoadBool(base+48))
}

func TestMemaddrCopyHelpers(t *testing.T) {
	region, err := NewOffHeapRegion(4096)
	require.NoError(t, err)
	defer region.Close()

	base := region.Base()
	payload := []byte("off-heap-bytes")
	CopyFromBytes(payload, 0, base, uint64(len(payload)))

	out := make([]byte, len(payload))
	CopyToBytes(base, out, 0, uint64(len(payload)))
	assert.Equal(t, payload, out)

	Copy(base, base+100, uint64(len(payload)))
	out2 := make([]byte, len(payload))
	CopyToBytes(base+100, out2, 0, uint64(len(payload)))
	assert.Equal(t, payload, out2)
}

func TestMemaddrFill(t *testing.T) {
	region, err := NewOffHeapRegion(256)
	require.NoError(t, err)
	defer region.Close()

	base := region.Base()
	Fill(base, 16, 0x7F)
	out := make([]byte, 16)
	CopyToBytes(base, out, 0, 16)
	for _, b := range out {
		assert.Equal(t, byte(0x7F), b)
	}
}

func TestMemaddrCAS(t *testing.T) {
	region, err := NewOffHeapRegion(256)
	require.NoError(t, err)
	defer region.Close()

	base := region.Base()
	StoreVolatileI32(base, 10)
	assert.True(t, CASI32(base, 10, 20))
	assert.Equal(t, int32(20), LoadVolatileI32(base))
	assert.False(t, CASI32(base, 10, 30))
	assert.Equal(t, int32(20), LoadVolatileI32(base))
}

func TestBufferBase(t *testing.T) {
	var empty []byte
	assert.Equal(t, Address(0), BufferBase(empty))

	buf := make([]byte, 8)
	assert.NotEqual(t, Address(0), BufferBase(buf))
}
