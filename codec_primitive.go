package voltkv

import "fmt"

// Primitive codecs: fixed size, zero-serialization store/load directly
// over the region via memaddr.go (spec §4.D, §6.2). Native byte order
// throughout -- the store is not portable across byte orders.

type Int8Codec struct{ fixedSizeCodec }

func NewInt8Codec() Int8Codec { return Int8Codec{fixedSizeCodec{1}} }
func (Int8Codec) SizeOf(int8) int32 { return 1 }
func (Int8Codec) Encode(addr Address, v int8) (int32, error) {
	StoreI8(addr, v)
	return 1, nil
}
func (Int8Codec) Decode(addr Address, size int32) (int8, error) {
	if size != 1 {
		return 0, wrap(ErrCodecError, errCodecSize(1, size))
	}
	return LoadI8(addr), nil
}

type Int16Codec struct{ fixedSizeCodec }

func NewInt16Codec() Int16Codec { return Int16Codec{fixedSizeCodec{2}} }
func (Int16Codec) SizeOf(int16) int32 { return 2 }
func (Int16Codec) Encode(addr Address, v int16) (int32, error) {
	StoreI16(addr, v)
	return 2, nil
}
func (Int16Codec) Decode(addr Address, size int32) (int16, error) {
	if size != 2 {
		return 0, wrap(ErrCodecError, errCodecSize(2, size))
	}
	return LoadI16(addr), nil
}

type Int32Codec struct{ fixedSizeCodec }

func NewInt32Codec() Int32Codec { return Int32Codec{fixedSizeCodec{4}} }
func (Int32Codec) SizeOf(int32) int32 { return 4 }
func (Int32Codec) Encode(addr Address, v int32) (int32, error) {
	StoreI32(addr, v)
	return 4, nil
}
func (Int32Codec) Decode(addr Address, size int32) (int32, error) {
	if size != 4 {
		return 0, wrap(ErrCodecError, errCodecSize(4, size))
	}
	return LoadI32(addr), nil
}

type Int64Codec struct{ fixedSizeCodec }

func NewInt64Codec() Int64Codec { return Int64Codec{fixedSizeCodec{8}} }
func (Int64Codec) SizeOf(int64) int32 { return 8 }
func (Int64Codec) Encode(addr Address, v int64) (int32, error) {
	StoreI64(addr, v)
	return 8, nil
}
func (Int64Codec) Decode(addr Address, size int32) (int64, error) {
	if size != 8 {
		return 0, wrap(ErrCodecError, errCodecSize(8, size))
	}
	return LoadI64(addr), nil
}

type Float32Codec struct{ fixedSizeCodec }

func NewFloat32Codec() Float32Codec { return Float32Codec{fixedSizeCodec{4}} }
func (Float32Codec) SizeOf(float32) int32 { return 4 }
func (Float32Codec) Encode(addr Address, v float32) (int32, error) {
	StoreF32(addr, v)
	return 4, nil
}
func (Float32Codec) Decode(addr Address, size int32) (float32, error) {
	if size != 4 {
		return 0, wrap(ErrCodecError, errCodecSize(4, size))
	}
	return LoadF32(addr), nil
}

type Float64Codec struct{ fixedSizeCodec }

func NewFloat64Codec() Float64Codec { return Float64Codec{fixedSizeCodec{8}} }
func (Float64Codec) SizeOf(float64) int32 { return 8 }
func (Float64Codec) Encode(addr Address, v float64) (int32, error) {
	StoreF64(addr, v)
	return 8, nil
}
func (Float64Codec) Decode(addr Address, size int32) (float64, error) {
	if size != 8 {
		return 0, wrap(ErrCodecError, errCodecSize(8, size))
	}
	return LoadF64(addr), nil
}

type BoolCodec struct{ fixedSizeCodec }

func NewBoolCodec() BoolCodec { return BoolCodec{fixedSizeCodec{1}} }
func (BoolCodec) SizeOf(bool) int32 { return 1 }
func (BoolCodec) Encode(addr Address, v bool) (int32, error) {
	StoreBool(addr, v)
	return 1, nil
}
func (BoolCodec) Decode(addr Address, size int32) (bool, error) {
	if size != 1 {
		return false, wrap(ErrCodecError, errCodecSize(1, size))
	}
	return LoadBool(addr), nil
}

func errCodecSize(want, got int32) error {
	return &codecSizeError{want: want, got: got}
}

type codecSizeError struct{ want, got int32 }

func (e *codecSizeError) Error() string {
	return fmt.Sprintf("codec: expected %d bytes, got %d", e.want, e.got)
}
