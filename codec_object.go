package voltkv

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ObjectCodec adapts vmihailenco/msgpack as the external, reflection-
// based serializer spec §4.D calls out: its wire format is opaque and
// versioned by that library, so the store only ever consults SizeOf and
// Encode/Decode, never interprets the bytes itself. Grounded on the
// teacher's own Item marshaling in the source repo's now-removed
// gomap.go, generalized from a single struct to any value msgpack can
// handle.
type ObjectCodec[T any] struct{}

func NewObjectCodec[T any]() ObjectCodec[T] { return ObjectCodec[T]{} }

func (ObjectCodec[T]) IsFixedSize() bool { return false }
func (ObjectCodec[T]) FixedSize() int32  { return -1 }

func (ObjectCodec[T]) SizeOf(v T) int32 {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return -1
	}
	return int32(len(b))
}

func (ObjectCodec[T]) Encode(addr Address, v T) (int32, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return 0, wrap(ErrCodecError, err)
	}
	if len(b) > 0 {
		CopyFromBytes(b, 0, addr, uint64(len(b)))
	}
	return int32(len(b)), nil
}

func (ObjectCodec[T]) Decode(addr Address, size int32) (T, error) {
	var zero T
	if size < 0 {
		return zero, wrap(ErrCodecError, fmt.Errorf("negative payload size %d", size))
	}
	buf := make([]byte, size)
	if size > 0 {
		CopyToBytes(addr, buf, 0, uint64(size))
	}
	var v T
	if err := msgpack.Unmarshal(buf, &v); err != nil {
		return zero, wrap(ErrCodecError, err)
	}
	return v, nil
}
