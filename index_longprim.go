package voltkv

import (
	"fmt"
	"math"
)

const (
	longEmpty    = 0
	longTombstone = math.MinInt64
)

// LongPrimitiveIndex is an open-addressed table over three parallel
// arrays (keys, addresses, sizes), linear-probed, load factor 0.75
// (spec §4.E.4). Slot state is encoded in keys[i]: 0 = empty, MIN =
// tombstone, anything else = live. A single stampedLock guards the
// whole table; Get and GetEntry try an optimistic stamp first, while
// GetSize, ContainsKey and Size take the read lock directly.
type LongPrimitiveIndex struct {
	lock     stampedLock
	keys     []int64
	addrs    []Address
	sizes    []int32
	count    int32
	liveplus int32 // live + tombstones, drives the 0.75 resize trigger
}

// NewLongPrimitiveIndex creates a table with at least initialCapacity
// slots, rounded up to the next power of two.
func NewLongPrimitiveIndex(initialCapacity uint32) *LongPrimitiveIndex {
	cap := nextPowerOfTwo(initialCapacity, 16)
	return &LongPrimitiveIndex{
		keys:  make([]int64, cap),
		addrs: make([]Address, cap),
		sizes: make([]int32, cap),
	}
}

func nextPowerOfTwo(n uint32, min uint32) uint64 {
	if n < min {
		n = min
	}
	p := uint64(1)
	for p < uint64(n) {
		p <<= 1
	}
	return p
}

func validLongKey(key int64) error {
	if key == longEmpty || key == longTombstone {
		return wrap(ErrInvalidKey, fmt.Errorf("key %d is a reserved sentinel", key))
	}
	return nil
}

// probe implements spec §4.E.4's probe algorithm: scan from h(k)&(C-1),
// remembering the first tombstone seen for insertion reuse.
func (idx *LongPrimitiveIndex) probe(key int64) (found int, foundOK bool, insertAt int) {
	capacity := uint64(len(idx.keys))
	start := murmurFinalizer64(uint64(key)) & (capacity - 1)
	insertAt = -1
	i := start
	for {
		slot := idx.keys[i]
		switch slot {
		case longEmpty:
			if insertAt < 0 {
				insertAt = int(i)
			}
			return -1, false, insertAt
		case longTombstone:
			if insertAt < 0 {
				insertAt = int(i)
			}
		default:
			if slot == key {
				return int(i), true, -1
			}
		}
		i = (i + 1) & (capacity - 1)
		if i == start {
			return -1, false, insertAt
		}
	}
}

func (idx *LongPrimitiveIndex) maybeResize() {
	if int64(idx.liveplus)*4 >= int64(len(idx.keys))*3 {
		idx.resize()
	}
}

func (idx *LongPrimitiveIndex) resize() {
	newCap := uint64(len(idx.keys)) * 2
	newKeys := make([]int64, newCap)
	newAddrs := make([]Address, newCap)
	newSizes := make([]int32, newCap)

	for i, k := range idx.keys {
		if k == longEmpty || k == longTombstone {
			continue
		}
		start := murmurFinalizer64(uint64(k)) & (newCap - 1)
		j := start
		for newKeys[j] != longEmpty {
			j = (j + 1) & (newCap - 1)
		}
		newKeys[j] = k
		newAddrs[j] = idx.addrs[i]
		newSizes[j] = idx.sizes[i]
	}

	idx.keys = newKeys
	idx.addrs = newAddrs
	idx.sizes = newSizes
	idx.liveplus = idx.count
}

func (idx *LongPrimitiveIndex) Put(key int64, addr Address, size int32) (Address, error) {
	old, had, err := idx.PutAndGetOld(key, addr, size)
	if err != nil || !had {
		return 0, err
	}
	return old.Address, nil
}

func (idx *LongPrimitiveIndex) PutAndGetOld(key int64, addr Address, size int32) (Entry, bool, error) {
	if err := validLongKey(key); err != nil {
		return Entry{}, false, err
	}
	idx.lock.lock()
	defer idx.lock.unlock()

	idx.maybeResize()
	foundIdx, found, insertAt := idx.probe(key)
	if found {
		old := Entry{Address: idx.addrs[foundIdx], Size: idx.sizes[foundIdx]}
		idx.addrs[foundIdx] = addr
		idx.sizes[foundIdx] = size
		return old, true, nil
	}
	if idx.keys[insertAt] != longTombstone {
		idx.liveplus++
	}
	idx.keys[insertAt] = key
	idx.addrs[insertAt] = addr
	idx.sizes[insertAt] = size
	idx.count++
	return Entry{}, false, nil
}

func (idx *LongPrimitiveIndex) Get(key int64) Address {
	if stamp, ok := idx.lock.tryOptimisticRead(); ok {
		i, found, _ := idx.probe(key)
		if idx.lock.validate(stamp) {
			if !found {
				return 0
			}
			return idx.addrs[i]
		}
	}
	idx.lock.rlock()
	defer idx.lock.runlock()
	i, found, _ := idx.probe(key)
	if !found {
		return 0
	}
	return idx.addrs[i]
}

func (idx *LongPrimitiveIndex) GetSize(key int64) int32 {
	idx.lock.rlock()
	defer idx.lock.runlock()
	i, found, _ := idx.probe(key)
	if !found {
		return -1
	}
	return idx.sizes[i]
}

func (idx *LongPrimitiveIndex) GetEntry(key int64) (Entry, bool) {
	if stamp, ok := idx.lock.tryOptimisticRead(); ok {
		i, found, _ := idx.probe(key)
		if idx.lock.validate(stamp) {
			if !found {
				return Entry{}, false
			}
			return Entry{Address: idx.addrs[i], Size: idx.sizes[i]}, true
		}
	}
	idx.lock.rlock()
	defer idx.lock.runlock()
	i, found, _ := idx.probe(key)
	if !found {
		return Entry{}, false
	}
	return Entry{Address: idx.addrs[i], Size: idx.sizes[i]}, true
}

func (idx *LongPrimitiveIndex) Remove(key int64) Address {
	old, had := idx.RemoveAndGet(key)
	if !had {
		return 0
	}
	return old.Address
}

func (idx *LongPrimitiveIndex) RemoveAndGet(key int64) (Entry, bool) {
	idx.lock.lock()
	defer idx.lock.unlock()
	i, found, _ := idx.probe(key)
	if !found {
		return Entry{}, false
	}
	old := Entry{Address: idx.addrs[i], Size: idx.sizes[i]}
	idx.keys[i] = longTombstone
	idx.count--
	return old, true
}

func (idx *LongPrimitiveIndex) ContainsKey(key int64) bool {
	idx.lock.rlock()
	defer idx.lock.runlock()
	_, found, _ := idx.probe(key)
	return found
}

func (idx *LongPrimitiveIndex) Size() int32 {
	idx.lock.rlock()
	defer idx.lock.runlock()
	return idx.count
}

func (idx *LongPrimitiveIndex) Clear() {
	idx.lock.lock()
	defer idx.lock.unlock()
	for i := range idx.keys {
		idx.keys[i] = longEmpty
	}
	idx.count = 0
	idx.liveplus = 0
}

func (idx *LongPrimitiveIndex) ClearWith(f func(addr Address, size int32)) {
	idx.lock.lock()
	defer idx.lock.unlock()
	for i, k := range idx.keys {
		if k != longEmpty && k != longTombstone {
			f(idx.addrs[i], idx.sizes[i])
		}
		idx.keys[i] = longEmpty
	}
	idx.count = 0
	idx.liveplus = 0
}

func (idx *LongPrimitiveIndex) ForEach(f func(key int64, addr Address, size int32)) {
	idx.lock.rlock()
	defer idx.lock.runlock()
	for i, k := range idx.keys {
		if k != longEmpty && k != longTombstone {
			f(k, idx.addrs[i], idx.sizes[i])
		}
	}
}

// SerializedSize/SerializeWithOffsets/DeserializeWithOffsets implement
// the wire shape from spec §6.4: i32 entry_count followed by
// (i64 key, i64 relative_offset, i32 value_size) per live entry.
func (idx *LongPrimitiveIndex) SerializedSize() int32 {
	idx.lock.rlock()
	defer idx.lock.runlock()
	return 4 + idx.count*(8+8+4)
}

func (idx *LongPrimitiveIndex) SerializeWithOffsets(addr Address, base Address) int32 {
	idx.lock.rlock()
	defer idx.lock.runlock()

	cursor := addr
	StoreI32(cursor, idx.count)
	cursor += 4
	for i, k := range idx.keys {
		if k == longEmpty || k == longTombstone {
			continue
		}
		StoreI64(cursor, k)
		cursor += 8
		StoreI64(cursor, int64(idx.addrs[i]-base))
		cursor += 8
		StoreI32(cursor, idx.sizes[i])
		cursor += 4
	}
	return int32(cursor - addr)
}

func (idx *LongPrimitiveIndex) DeserializeWithOffsets(addr Address, size int32, base Address) error {
	idx.lock.lock()
	defer idx.lock.unlock()

	cursor := addr
	end := addr + Address(size)
	if cursor+4 > end {
		return wrap(ErrCodecError, fmt.Errorf("long-primitive index payload too short"))
	}
	count := LoadI32(cursor)
	cursor += 4

	cap := nextPowerOfTwo(uint32(float64(count)/0.7)+1, 16)
	idx.keys = make([]int64, cap)
	idx.addrs = make([]Address, cap)
	idx.sizes = make([]int32, cap)
	idx.count = 0
	idx.liveplus = 0

	for i := int32(0); i < count; i++ {
		if cursor+20 > end {
			return wrap(ErrCodecError, fmt.Errorf("long-primitive index entry %d truncated", i))
		}
		key := LoadI64(cursor)
		cursor += 8
		relOffset := LoadI64(cursor)
		cursor += 8
		valSize := LoadI32(cursor)
		cursor += 4

		start := murmurFinalizer64(uint64(key)) & (cap - 1)
		j := start
		for idx.keys[j] != longEmpty {
			j = (j + 1) & (cap - 1)
		}
		idx.keys[j] = key
		idx.addrs[j] = base + Address(relOffset)
		idx.sizes[j] = valSize
		idx.count++
		idx.liveplus++
	}
	return nil
}

func (idx *LongPrimitiveIndex) Close() error { return nil }
