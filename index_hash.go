package voltkv

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// HashIndex is a mutex-guarded Go map of small immutable Entry records
// (spec §4.E.2). The map lacks Go's ecosystem-standard "insert and
// return prior value" primitive, so per DESIGN NOTES §9 it is wrapped in
// a mutex: PutAndGetOld and RemoveAndGet are each a single critical
// section, which is the contract that matters, not the implementation.
type HashIndex[K comparable] struct {
	codec KeyCodec[K]

	mu      sync.RWMutex
	entries map[K]Entry
	count   atomic.Int32
}

func NewHashIndex[K comparable](codec KeyCodec[K]) *HashIndex[K] {
	return &HashIndex[K]{codec: codec, entries: make(map[K]Entry)}
}

func (h *HashIndex[K]) Put(key K, addr Address, size int32) (Address, error) {
	old, had, err := h.PutAndGetOld(key, addr, size)
	if err != nil || !had {
		return 0, err
	}
	return old.Address, nil
}

func (h *HashIndex[K]) PutAndGetOld(key K, addr Address, size int32) (Entry, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	old, had := h.entries[key]
	h.entries[key] = Entry{Address: addr, Size: size}
	if !had {
		h.count.Add(1)
	}
	return old, had, nil
}

func (h *HashIndex[K]) Get(key K) Address {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[key].Address
}

func (h *HashIndex[K]) GetSize(key K) int32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.entries[key]
	if !ok {
		return -1
	}
	return e.Size
}

func (h *HashIndex[K]) GetEntry(key K) (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.entries[key]
	return e, ok
}

func (h *HashIndex[K]) Remove(key K) Address {
	old, had := h.RemoveAndGet(key)
	if !had {
		return 0
	}
	return old.Address
}

func (h *HashIndex[K]) RemoveAndGet(key K) (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	old, had := h.entries[key]
	if had {
		delete(h.entries, key)
		h.count.Add(-1)
	}
	return old, had
}

func (h *HashIndex[K]) ContainsKey(key K) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.entries[key]
	return ok
}

func (h *HashIndex[K]) Size() int32 { return h.count.Load() }

func (h *HashIndex[K]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make(map[K]Entry)
	h.count.Store(0)
}

func (h *HashIndex[K]) ClearWith(f func(addr Address, size int32)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		f(e.Address, e.Size)
	}
	h.entries = make(map[K]Entry)
	h.count.Store(0)
}

func (h *HashIndex[K]) ForEach(f func(key K, addr Address, size int32)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for k, e := range h.entries {
		f(k, e.Address, e.Size)
	}
}

// SerializedSize computes the exact byte length SerializeWithOffsets
// will write, per the wire shape in spec §6.4.
func (h *HashIndex[K]) SerializedSize() int32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := int32(4) // entry_count
	for k := range h.entries {
		total += 4 + int32(len(h.codec.EncodeKey(k))) + 8 + 4
	}
	return total
}

func (h *HashIndex[K]) SerializeWithOffsets(addr Address, base Address) int32 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cursor := addr
	StoreI32(cursor, int32(len(h.entries)))
	cursor += 4

	for k, e := range h.entries {
		kb := h.codec.EncodeKey(k)
		StoreI32(cursor, int32(len(kb)))
		cursor += 4
		if len(kb) > 0 {
			CopyFromBytes(kb, 0, cursor, uint64(len(kb)))
		}
		cursor += Address(len(kb))
		StoreI64(cursor, int64(e.Address-base))
		cursor += 8
		StoreI32(cursor, e.Size)
		cursor += 4
	}
	return int32(cursor - addr)
}

func (h *HashIndex[K]) DeserializeWithOffsets(addr Address, size int32, base Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cursor := addr
	end := addr + Address(size)
	if cursor+4 > end {
		return wrap(ErrCodecError, fmt.Errorf("hash index payload too short"))
	}
	count := LoadI32(cursor)
	cursor += 4

	entries := make(map[K]Entry, count)
	for i := int32(0); i < count; i++ {
		if cursor+4 > end {
			return wrap(ErrCodecError, fmt.Errorf("hash index entry %d truncated", i))
		}
		keyLen := LoadI32(cursor)
		cursor += 4
		kb := make([]byte, keyLen)
		if keyLen > 0 {
			CopyToBytes(cursor, kb, 0, uint64(keyLen))
		}
		cursor += Address(keyLen)
		relOffset := LoadI64(cursor)
		cursor += 8
		valSize := LoadI32(cursor)
		cursor += 4

		k := h.codec.DecodeKey(kb)
		entries[k] = Entry{Address: base + Address(relOffset), Size: valSize}
	}

	h.entries = entries
	h.count.Store(int32(len(entries)))
	return nil
}

func (h *HashIndex[K]) Close() error { return nil }
