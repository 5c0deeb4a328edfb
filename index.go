package voltkv

// Entry is the index's in-memory representation of the logical
// (key, address, size) triple (spec §3): the location inside the region
// where the encoded value begins, and the exact byte count the codec
// wrote there.
type Entry struct {
	Address Address
	Size    int32
}

// Index is the contract shared by every index variant (spec §4.E):
// HashIndex, SegmentedHashIndex, LongPrimitiveIndex, IntPrimitiveIndex.
type Index[K comparable] interface {
	// Put is retained for single-threaded callers; PutAndGetOld is what
	// the store actually uses (spec §4.E, deprecated but kept). Both
	// return ErrInvalidKey for a reserved sentinel key on the
	// primitive-index variants; the hash-table variants never fail.
	Put(key K, addr Address, size int32) (Address, error)

	// PutAndGetOld atomically installs (addr, size) for key and returns
	// the entry it replaced, if any. This is the store's core
	// atomicity primitive (spec §4.E.1).
	PutAndGetOld(key K, addr Address, size int32) (old Entry, hadOld bool, err error)

	Get(key K) Address
	GetSize(key K) int32

	// GetEntry reads (address, size) as a single atomic pair, avoiding
	// the torn read that two independent Get/GetSize calls could
	// observe under a concurrent update of the same key.
	GetEntry(key K) (Entry, bool)

	Remove(key K) Address
	RemoveAndGet(key K) (old Entry, hadOld bool)

	ContainsKey(key K) bool
	Size() int32
	Clear()
	ClearWith(f func(addr Address, size int32))
	ForEach(f func(key K, addr Address, size int32))

	SerializedSize() int32
	SerializeWithOffsets(addr Address, base Address) int32
	DeserializeWithOffsets(addr Address, size int32, base Address) error

	Close() error
}

// KeyCodec turns a key into its persistable byte form for §6.4's
// relative-offset serialization; SegmentedHashIndex also hashes those
// bytes to pick a segment. It is the index family's analogue of the
// value Codec.
type KeyCodec[K comparable] interface {
	EncodeKey(k K) []byte
	DecodeKey(b []byte) K
}

// StringKeyCodec is the default KeyCodec for string keys.
type StringKeyCodec struct{}

func (StringKeyCodec) EncodeKey(k string) []byte { return []byte(k) }
func (StringKeyCodec) DecodeKey(b []byte) string  { return string(b) }

// BytesKeyCodec is a KeyCodec for any string-based key type (K ~string),
// converting the key to and from its raw bytes. Go maps require
// comparable keys, so variable-length byte keys are carried as such a
// string type rather than as []byte.
type BytesKeyCodec[K ~string] struct{}

func (BytesKeyCodec[K]) EncodeKey(k K) []byte { return []byte(k) }
func (BytesKeyCodec[K]) DecodeKey(b []byte) K  { return K(b) }
