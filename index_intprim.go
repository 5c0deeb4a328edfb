package voltkv

import (
	"fmt"
	"math"
)

const (
	intEmpty     = 0
	intTombstone = math.MinInt32
)

// IntPrimitiveIndex mirrors LongPrimitiveIndex (spec §4.E.4) with int32
// keys and the spec's 32-bit mix hash instead of the 64-bit finalizer.
type IntPrimitiveIndex struct {
	lock     stampedLock
	keys     []int32
	addrs    []Address
	sizes    []int32
	count    int32
	liveplus int32
}

func NewIntPrimitiveIndex(initialCapacity uint32) *IntPrimitiveIndex {
	cap := nextPowerOfTwo(initialCapacity, 16)
	return &IntPrimitiveIndex{
		keys:  make([]int32, cap),
		addrs: make([]Address, cap),
		sizes: make([]int32, cap),
	}
}

func validIntKey(key int32) error {
	if key == intEmpty || key == intTombstone {
		return wrap(ErrInvalidKey, fmt.Errorf("key %d is a reserved sentinel", key))
	}
	return nil
}

func (idx *IntPrimitiveIndex) probe(key int32) (found int, foundOK bool, insertAt int) {
	capacity := uint64(len(idx.keys))
	start := uint64(mix32(uint32(key))) & (capacity - 1)
	insertAt = -1
	i := start
	for {
		slot := idx.keys[i]
		switch slot {
		case intEmpty:
			if insertAt < 0 {
				insertAt = int(i)
			}
			return -1, false, insertAt
		case intTombstone:
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

func (idx *IntPrimitiveIndex) maybeResize() {
	if int64(idx.liveplus)*4 >= int64(len(idx.keys))*3 {
		idx.resize()
	}
}

func (idx *IntPrimitiveIndex) resize() {
	newCap := uint64(len(idx.keys)) * 2
	newKeys := make([]int32, newCap)
	newAddrs := make([]Address, newCap)
	newSizes := make([]int32, newCap)

	for i, k := range idx.keys {
		if k == intEmpty || k == intTombstone {
			continue
		}
		start := uint64(mix32(uint32(k))) & (newCap - 1)
		j := start
		for newKeys[j] != intEmpty {
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

func (idx *IntPrimitiveIndex) Put(key int32, addr Address, size int32) (Address, error) {
	old, had, err := idx.PutAndGetOld(key, addr, size)
	if err != nil || !had {
		return 0, err
	}
	return old.Address, nil
}

func (idx *IntPrimitiveIndex) PutAndGetOld(key int32, addr Address, size int32) (Entry, bool, error) {
	if err := validIntKey(key); err != nil {
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
	if idx.keys[insertAt] != intTombstone {
		idx.liveplus++
	}
	idx.keys[insertAt] = key
	idx.addrs[insertAt] = addr
	idx.sizes[insertAt] = size
	idx.count++
	return Entry{}, false, nil
}

func (idx *IntPrimitiveIndex) Get(key int32) Address {
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

func (idx *IntPrimitiveIndex) GetSize(key int32) int32 {
	idx.lock.rlock()
	defer idx.lock.runlock()
	i, found, _ := idx.probe(key)
	if !found {
		return -1
	}
	return idx.sizes[i]
}

func (idx *IntPrimitiveIndex) GetEntry(key int32) (Entry, bool) {
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

func (idx *IntPrimitiveIndex) Remove(key int32) Address {
	old, had := idx.RemoveAndGet(key)
	if !had {
		return 0
	}
	return old.Address
}

func (idx *IntPrimitiveIndex) RemoveAndGet(key int32) (Entry, bool) {
	idx.lock.lock()
	defer idx.lock.unlock()
	i, found, _ := idx.probe(key)
	if !found {
		return Entry{}, false
	}
	old := Entry{Address: idx.addrs[i], Size: idx.sizes[i]}
	idx.keys[i] = intTombstone
	idx.count--
	return old, true
}

func (idx *IntPrimitiveIndex) ContainsKey(key int32) bool {
	idx.lock.rlock()
	defer idx.lock.runlock()
	_, found, _ := idx.probe(key)
	return found
}

func (idx *IntPrimitiveIndex) Size() int32 {
	idx.lock.rlock()
	defer idx.lock.runlock()
	return idx.count
}

func (idx *IntPrimitiveIndex) Clear() {
	idx.lock.lock()
	defer idx.lock.unlock()
	for i := range idx.keys {
		idx.keys[i] = intEmpty
	}
	idx.count = 0
	idx.liveplus = 0
}

func (idx *IntPrimitiveIndex) ClearWith(f func(addr Address, size int32)) {
	idx.lock.lock()
	defer idx.lock.unlock()
	for i, k := range idx.keys {
		if k != intEmpty && k != intTombstone {
			f(idx.addrs[i], idx.sizes[i])
		}
		idx.keys[i] = intEmpty
	}
	idx.count = 0
	idx.liveplus = 0
}

func (idx *IntPrimitiveIndex) ForEach(f func(key int32, addr Address, size int32)) {
	idx.lock.rlock()
	defer idx.lock.runlock()
	for i, k := range idx.keys {
		if k != intEmpty && k != intTombstone {
			f(k, idx.addrs[i], idx.sizes[i])
		}
	}
}

func (idx *IntPrimitiveIndex) SerializedSize() int32 {
	idx.lock.rlock()
	defer idx.lock.runlock()
	return 4 + idx.count*(4+8+4)
}

func (idx *IntPrimitiveIndex) SerializeWithOffsets(addr Address, base Address) int32 {
	idx.lock.rlock()
	defer idx.lock.runlock()

	cursor := addr
	StoreI32(cursor, idx.count)
	cursor += 4
	for i, k := range idx.keys {
		if k == intEmpty || k == intTombstone {
			continue
		}
		StoreI32(cursor, k)
		cursor += 4
		StoreI64(cursor, int64(idx.addrs[i]-base))
		cursor += 8
		StoreI32(cursor, idx.sizes[i])
		cursor += 4
	}
	return int32(cursor - addr)
}

func (idx *IntPrimitiveIndex) DeserializeWithOffsets(addr Address, size int32, base Address) error {
	idx.lock.lock()
	defer idx.lock.unlock()

	cursor := addr
	end := addr + Address(size)
	if cursor+4 > end {
		return wrap(ErrCodecError, fmt.Errorf("int-primitive index payload too short"))
	}
	count := LoadI32(cursor)
	cursor += 4

	cap := nextPowerOfTwo(uint32(float64(count)/0.7)+1, 16)
	idx.keys = make([]int32, cap)
	idx.addrs = make([]Address, cap)
	idx.sizes = make([]int32, cap)
	idx.count = 0
	idx.liveplus = 0

	for i := int32(0); i < count; i++ {
		if cursor+16 > end {
			return wrap(ErrCodecError, fmt.Errorf("int-primitive index entry %d truncated", i))
		}
		key := LoadI32(cursor)
		cursor += 4
		relOffset := LoadI64(cursor)
		cursor += 8
		valSize := LoadI32(cursor)
		cursor += 4

		start := uint64(mix32(uint32(key))) & (cap - 1)
		j := start
		for idx.keys[j] != intEmpty {
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

func (idx *IntPrimitiveIndex) Close() error { return nil }
