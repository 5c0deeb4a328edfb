package voltkv

import "fmt"

// StringCodec implements the wire format from spec §4.D/§6.2:
// [i32 length, bytes]. Length -1 denotes a null value (represented in
// Go by a *string of nil); length 0 is an empty, non-nil string.
type StringCodec struct{}

func NewStringCodec() StringCodec { return StringCodec{} }

func (StringCodec) IsFixedSize() bool { return false }
func (StringCodec) FixedSize() int32  { return -1 }

func (StringCodec) SizeOf(v *string) int32 {
	if v == nil {
		return 4
	}
	return 4 + int32(len(*v))
}

func (StringCodec) Encode(addr Address, v *string) (int32, error) {
	if v == nil {
		StoreI32(addr, -1)
		return 4, nil
	}
	StoreI32(addr, int32(len(*v)))
	if len(*v) > 0 {
		CopyFromBytes([]byte(*v), 0, addr+4, uint64(len(*v)))
	}
	return 4 + int32(len(*v)), nil
}

func (StringCodec) Decode(addr Address, size int32) (*string, error) {
	if size < 4 {
		return nil, wrap(ErrCodecError, fmt.Errorf("string payload too short: %d bytes", size))
	}
	length := LoadI32(addr)
	if length == -1 {
		return nil, nil
	}
	if length < 0 || int32(4+length) != size {
		return nil, wrap(ErrCodecError, fmt.Errorf("string length %d inconsistent with payload size %d", length, size))
	}
	buf := make([]byte, length)
	if length > 0 {
		CopyToBytes(addr+4, buf, 0, uint64(length))
	}
	s := string(buf)
	return &s, nil
}
