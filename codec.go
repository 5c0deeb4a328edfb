package voltkv

// Codec encodes and decodes a typed value at an address (spec §4.D).
// SizeOf must return the exact byte count Encode will write; a negative
// size is a fatal misconfiguration the store surfaces as ErrCodecError.
type Codec[T any] interface {
	SizeOf(v T) int32
	Encode(addr Address, v T) (int32, error)
	Decode(addr Address, size int32) (T, error)
	IsFixedSize() bool
	FixedSize() int32
}

// fixedSizeCodec is embedded by the primitive codecs to supply the
// IsFixedSize/FixedSize hints uniformly.
type fixedSizeCodec struct{ size int32 }

func (f fixedSizeCodec) IsFixedSize() bool { return true }
func (f fixedSizeCodec) FixedSize() int32  { return f.size }
