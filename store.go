package voltkv

import (
	"fmt"
	"sync/atomic"
)

// Store composes a Codec, an Allocator/Storage, and an Index into the
// put/get/remove/clear protocol spec §4.F describes, including the
// ordering rules that keep a racing reader from ever observing freed
// memory (spec §4.E.1, §5).
type Store[K comparable, V any] struct {
	index      Index[K]
	indexType  IndexType
	valueCodec Codec[V]
	storage    Storage
	region     *Region // nil for OffHeap
	persistent bool    // mmap-only: write the header on Close

	closed atomic.Bool
}

// NewOffHeapStore composes an already-constructed Index with an OffHeap
// region of cfg.MaxMemory bytes. Callers build the Index themselves
// (NewHashIndex, NewSegmentedHashIndex, NewLongPrimitiveIndex, or
// NewIntPrimitiveIndex) so the key type K is always the one the chosen
// variant actually requires.
func NewOffHeapStore[K comparable, V any](cfg *Config, index Index[K], indexType IndexType, valueCodec Codec[V]) (*Store[K, V], error) {
	if cfg.Backend != BackendOffHeap {
		return nil, wrap(ErrConfig, fmt.Errorf("config is not an OffHeap configuration"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	storage, err := NewOffHeapStorage(cfg.MaxMemory)
	if err != nil {
		return nil, err
	}
	return &Store[K, V]{index: index, indexType: indexType, valueCodec: valueCodec, storage: storage}, nil
}

// NewMmapStore opens (or creates) cfg's backing file and composes it
// with index. For an existing persistent file, it validates the header
// against indexType and restores every entry via
// index.DeserializeWithOffsets before returning.
func NewMmapStore[K comparable, V any](cfg *Config, index Index[K], indexType IndexType, valueCodec Codec[V]) (*Store[K, V], error) {
	if cfg.Backend != BackendMmap {
		return nil, wrap(ErrConfig, fmt.Errorf("config is not an Mmap configuration"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode := mmapPersistent
	if cfg.Temporary {
		mode = mmapTemporary
	}
	region, existingFile, err := openMmapRegion(cfg.Path, cfg.AllocateSize, mode)
	if err != nil {
		return nil, err
	}

	startOffset := uint64(HeaderSize)
	if existingFile && !cfg.Temporary {
		header, herr := readHeader(region)
		if herr != nil {
			region.Close()
			return nil, herr
		}
		if header.IndexType != indexType {
			region.Close()
			return nil, wrap(ErrIncompatibleIndex, fmt.Errorf("file was closed with index type %d, opened as %d", header.IndexType, indexType))
		}
		startOffset = header.CurrentOffset
		indexAddr := region.Base() + Address(header.IndexOffset)
		if err := index.DeserializeWithOffsets(indexAddr, int32(header.IndexSize), region.Base()); err != nil {
			region.Close()
			return nil, err
		}
	}

	alloc := NewMmapAllocator(region, startOffset)
	storage := NewMmapStorage(alloc, region)

	return &Store[K, V]{
		index:      index,
		indexType:  indexType,
		valueCodec: valueCodec,
		storage:    storage,
		region:     region,
		persistent: !cfg.Temporary,
	}, nil
}

// Put installs value for key, returning the value it replaced if the key
// was already present. Ordering follows spec §4.F exactly: the new value
// is fully encoded before the index swap, and the old allocation is
// freed only after that swap returns -- and only after the old value has
// been decoded, per DESIGN NOTES §9 item 1.
func (s *Store[K, V]) Put(key K, value V) (prior V, hadPrior bool, err error) {
	var zero V
	if s.closed.Load() {
		return zero, false, ErrAlreadyClosed
	}

	size := s.valueCodec.SizeOf(value)
	if size < 0 {
		return zero, false, wrap(ErrCodecError, fmt.Errorf("codec returned negative size %d", size))
	}

	addr, err := s.storage.Allocate(uint32(size))
	if err != nil {
		return zero, false, err
	}

	written, err := s.valueCodec.Encode(addr, value)
	if err != nil {
		s.storage.Free(addr, uint32(size))
		return zero, false, wrap(ErrCodecError, err)
	}

	old, had, err := s.index.PutAndGetOld(key, addr, written)
	if err != nil {
		s.storage.Free(addr, uint32(written))
		return zero, false, err
	}
	if !had {
		return zero, false, nil
	}

	oldVal, derr := s.valueCodec.Decode(old.Address, old.Size)
	s.storage.Free(old.Address, uint32(old.Size))
	if derr != nil {
		return zero, false, wrap(ErrCodecError, derr)
	}
	return oldVal, true, nil
}

// Get decodes the value currently mapped to key, or (zero, false, nil)
// if absent.
func (s *Store[K, V]) Get(key K) (V, bool, error) {
	var zero V
	if s.closed.Load() {
		return zero, false, ErrAlreadyClosed
	}
	entry, ok := s.index.GetEntry(key)
	if !ok || entry.Address == 0 {
		return zero, false, nil
	}
	v, err := s.valueCodec.Decode(entry.Address, entry.Size)
	if err != nil {
		return zero, false, wrap(ErrCodecError, err)
	}
	return v, true, nil
}

// Remove deletes key and returns the value it held, if any.
func (s *Store[K, V]) Remove(key K) (V, bool, error) {
	var zero V
	if s.closed.Load() {
		return zero, false, ErrAlreadyClosed
	}
	old, had := s.index.RemoveAndGet(key)
	if !had {
		return zero, false, nil
	}
	v, derr := s.valueCodec.Decode(old.Address, old.Size)
	s.storage.Free(old.Address, uint32(old.Size))
	if derr != nil {
		return zero, false, wrap(ErrCodecError, derr)
	}
	return v, true, nil
}

func (s *Store[K, V]) ContainsKey(key K) bool { return s.index.ContainsKey(key) }
func (s *Store[K, V]) Size() int32            { return s.index.Size() }
func (s *Store[K, V]) IsEmpty() bool          { return s.Size() == 0 }

// Clear frees every live entry's storage and empties the index in one
// pass (spec §4.F).
func (s *Store[K, V]) Clear() {
	s.index.ClearWith(func(addr Address, size int32) {
		s.storage.Free(addr, uint32(size))
	})
}

// Flush forces the backing medium to durable storage; a no-op for
// OffHeap.
func (s *Store[K, V]) Flush() error { return s.storage.Flush() }

// Close releases the store's resources. For a persistent Mmap store it
// first serializes the index with relative offsets and writes the
// header (spec §4.G close protocol); only a graceful close produces a
// file that reopens without re-scanning values.
func (s *Store[K, V]) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.region != nil && s.persistent {
		if err := s.saveMmapIndex(); err != nil {
			return err
		}
	}
	if err := s.index.Close(); err != nil {
		return err
	}
	return s.storage.Close()
}

func (s *Store[K, V]) saveMmapIndex() error {
	dataEnd := s.storage.Used()
	indexSize := s.index.SerializedSize()
	base := s.region.Base()

	if dataEnd+uint64(indexSize) > s.region.Len() {
		return wrap(ErrOutOfSpace, fmt.Errorf("index (%d bytes) does not fit after data end %d in a %d-byte file", indexSize, dataEnd, s.region.Len()))
	}

	indexAddr := base + Address(dataEnd)
	written := s.index.SerializeWithOffsets(indexAddr, base)

	header := &Header{
		IndexType:     s.indexType,
		EntryCount:    s.index.Size(),
		CurrentOffset: dataEnd,
		IndexOffset:   dataEnd,
		IndexSize:     uint64(written),
	}
	if err := writeHeader(s.region, header); err != nil {
		return err
	}
	return s.region.Flush()
}
