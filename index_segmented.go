package voltkv

import (
	"fmt"
	"sync/atomic"
)

// segmentedSegment is one segment of a SegmentedHashIndex: its own plain
// map plus an optimistic-read/read/write lock (spec §4.E.3).
type segmentedSegment[K comparable] struct {
	lock    stampedLock
	entries map[K]Entry
}

// SegmentedHashIndex shards its keyspace across N segments (N a power
// of two, default 64), each independently locked, so writers to
// different segments never contend (spec §4.E.3). Reads take an
// optimistic stamp first and only fall back to a real read lock when
// the stamp doesn't validate.
type SegmentedHashIndex[K comparable] struct {
	codec    KeyCodec[K]
	segments []*segmentedSegment[K]
	mask     uint64
	count    atomic.Int32
}

// NewSegmentedHashIndex creates an index with segmentCount segments,
// which must be a power of two.
func NewSegmentedHashIndex[K comparable](codec KeyCodec[K], segmentCount int) (*SegmentedHashIndex[K], error) {
	if segmentCount <= 0 || segmentCount&(segmentCount-1) != 0 {
		return nil, wrap(ErrConfig, fmt.Errorf("segment count %d is not a power of two", segmentCount))
	}
	segs := make([]*segmentedSegment[K], segmentCount)
	for i := range segs {
		segs[i] = &segmentedSegment[K]{entries: make(map[K]Entry)}
	}
	return &SegmentedHashIndex[K]{codec: codec, segments: segs, mask: uint64(segmentCount - 1)}, nil
}

func (s *SegmentedHashIndex[K]) segmentFor(key K) *segmentedSegment[K] {
	h := hashBytes(s.codec.EncodeKey(key))
	return s.segments[h&s.mask]
}

func (s *SegmentedHashIndex[K]) Put(key K, addr Address, size int32) (Address, error) {
	old, had, err := s.PutAndGetOld(key, addr, size)
	if err != nil || !had {
		return 0, err
	}
	return old.Address, nil
}

func (s *SegmentedHashIndex[K]) PutAndGetOld(key K, addr Address, size int32) (Entry, bool, error) {
	seg := s.segmentFor(key)
	seg.lock.lock()
	defer seg.lock.unlock()
	old, had := seg.entries[key]
	seg.entries[key] = Entry{Address: addr, Size: size}
	if !had {
		s.count.Add(1)
	}
	return old, had, nil
}

func (s *SegmentedHashIndex[K]) Get(key K) Address {
	seg := s.segmentFor(key)
	if stamp, ok := seg.lock.tryOptimisticRead(); ok {
		e := seg.entries[key]
		if seg.lock.validate(stamp) {
			return e.Address
		}
	}
	seg.lock.rlock()
	defer seg.lock.runlock()
	return seg.entries[key].Address
}

func (s *SegmentedHashIndex[K]) GetSize(key K) int32 {
	seg := s.segmentFor(key)
	if stamp, ok := seg.lock.tryOptimisticRead(); ok {
		e, exists := seg.entries[key]
		if seg.lock.validate(stamp) {
			if !exists {
				return -1
			}
			return e.Size
		}
	}
	seg.lock.rlock()
	defer seg.lock.runlock()
	e, exists := seg.entries[key]
	if !exists {
		return -1
	}
	return e.Size
}

func (s *SegmentedHashIndex[K]) GetEntry(key K) (Entry, bool) {
	seg := s.segmentFor(key)
	if stamp, ok := seg.lock.tryOptimisticRead(); ok {
		e, exists := seg.entries[key]
		if seg.lock.validate(stamp) {
			return e, exists
		}
	}
	seg.lock.rlock()
	defer seg.lock.runlock()
	e, exists := seg.entries[key]
	return e, exists
}

func (s *SegmentedHashIndex[K]) Remove(key K) Address {
	old, had := s.RemoveAndGet(key)
	if !had {
		return 0
	}
	return old.Address
}

func (s *SegmentedHashIndex[K]) RemoveAndGet(key K) (Entry, bool) {
	seg := s.segmentFor(key)
	seg.lock.lock()
	defer seg.lock.unlock()
	old, had := seg.entries[key]
	if had {
		delete(seg.entries, key)
		s.count.Add(-1)
	}
	return old, had
}

func (s *SegmentedHashIndex[K]) ContainsKey(key K) bool {
	seg := s.segmentFor(key)
	if stamp, ok := seg.lock.tryOptimisticRead(); ok {
		_, exists := seg.entries[key]
		if seg.lock.validate(stamp) {
			return exists
		}
	}
	seg.lock.rlock()
	defer seg.lock.runlock()
	_, exists := seg.entries[key]
	return exists
}

func (s *SegmentedHashIndex[K]) Size() int32 { return s.count.Load() }

func (s *SegmentedHashIndex[K]) Clear() {
	for _, seg := range s.segments {
		seg.lock.lock()
		seg.entries = make(map[K]Entry)
		seg.lock.unlock()
	}
	s.count.Store(0)
}

func (s *SegmentedHashIndex[K]) ClearWith(f func(addr Address, size int32)) {
	for _, seg := range s.segments {
		seg.lock.lock()
		for _, e := range seg.entries {
			f(e.Address, e.Size)
		}
		seg.entries = make(map[K]Entry)
		seg.lock.unlock()
	}
	s.count.Store(0)
}

func (s *SegmentedHashIndex[K]) ForEach(f func(key K, addr Address, size int32)) {
	for _, seg := range s.segments {
		seg.lock.rlock()
		for k, e := range seg.entries {
			f(k, e.Address, e.Size)
		}
		seg.lock.runlock()
	}
}

// SerializedSize mirrors HashIndex's layout but adds the segment_count
// and total_entry_count header fields spec §6.4 specifies for the
// segmented variant; segment membership itself is not persisted.
func (s *SegmentedHashIndex[K]) SerializedSize() int32 {
	total := int32(8) // segment_count + total_entry_count
	for _, seg := range s.segments {
		seg.lock.rlock()
		for k := range seg.entries {
			total += 4 + int32(len(s.codec.EncodeKey(k))) + 8 + 4
		}
		seg.lock.runlock()
	}
	return total
}

func (s *SegmentedHashIndex[K]) SerializeWithOffsets(addr Address, base Address) int32 {
	cursor := addr
	StoreI32(cursor, int32(len(s.segments)))
	cursor += 4
	totalCountAddr := cursor
	cursor += 4

	var total int32
	for _, seg := range s.segments {
		seg.lock.rlock()
		for k, e := range seg.entries {
			kb := s.codec.EncodeKey(k)
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
			total++
		}
		seg.lock.runlock()
	}
	StoreI32(totalCountAddr, total)
	return int32(cursor - addr)
}

func (s *SegmentedHashIndex[K]) DeserializeWithOffsets(addr Address, size int32, base Address) error {
	cursor := addr
	end := addr + Address(size)
	if cursor+8 > end {
		return wrap(ErrCodecError, fmt.Errorf("segmented index payload too short"))
	}
	persistedSegCount := LoadI32(cursor)
	cursor += 4
	if int(persistedSegCount) != len(s.segments) {
		return wrap(ErrIncompatibleIndex, fmt.Errorf("persisted segment count %d does not match configured %d", persistedSegCount, len(s.segments)))
	}
	total := LoadI32(cursor)
	cursor += 4

	fresh := make([]map[K]Entry, len(s.segments))
	for i := range fresh {
		fresh[i] = make(map[K]Entry)
	}

	for i := int32(0); i < total; i++ {
		if cursor+4 > end {
			return wrap(ErrCodecError, fmt.Errorf("segmented index entry %d truncated", i))
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

		k := s.codec.DecodeKey(kb)
		h := hashBytes(kb)
		fresh[h&s.mask][k] = Entry{Address: base + Address(relOffset), Size: valSize}
	}

	for i, seg := range s.segments {
		seg.lock.lock()
		seg.entries = fresh[i]
		seg.lock.unlock()
	}
	s.count.Store(total)
	return nil
}

func (s *SegmentedHashIndex[K]) Close() error { return nil }
