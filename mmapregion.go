package voltkv

import (
	"fmt"
	"os"

	mmapgo "github.com/edsrzf/mmap-go"
)

// mmapOpenMode selects how the backing file is created and disposed of,
// mirroring the teacher's folder-based open in fileutil.go generalized
// to the spec's Persistent/Temporary distinction (spec §6.1).
type mmapOpenMode int

const (
	mmapPersistent mmapOpenMode = iota
	mmapTemporary
)

// openMmapRegion opens (creating if necessary) the file at path, extends
// it to size bytes if it is smaller, and maps it in fixed-size segments.
// It returns the region alongside whether the file already had content
// (existingFile) so the caller can decide whether to trust a persisted
// header.
func openMmapRegion(path string, size uint64, mode mmapOpenMode) (region *Region, existingFile bool, err error) {
	if size == 0 {
		return nil, false, wrap(ErrInvalidSize, fmt.Errorf("allocate size must be > 0"))
	}

	if mode == mmapTemporary {
		f, ferr := os.CreateTemp("", "voltkv-*.mmap")
		if ferr != nil {
			return nil, false, wrap(ErrIOError, ferr)
		}
		path = f.Name()
		f.Close()
	}

	existingFile = fileHasContent(path)

	f, ferr := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if ferr != nil {
		return nil, false, wrap(ErrIOError, ferr)
	}

	fi, serr := f.Stat()
	if serr != nil {
		f.Close()
		return nil, false, wrap(ErrIOError, serr)
	}
	if uint64(fi.Size()) < size {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, false, wrap(ErrIOError, err)
		}
	} else {
		size = uint64(fi.Size())
	}

	applyFadvise(int(f.Fd()), int64(size))

	segCount := (size + segmentSize - 1) / segmentSize
	segs := make([]segment, 0, segCount)
	mapped := make([]mmapgo.MMap, 0, segCount)
	var offset int64
	remaining := size
	for remaining > 0 {
		n := remaining
		if n > segmentSize {
			n = segmentSize
		}
		m, merr := mmapgo.MapRegion(f, int(n), mmapgo.RDWR, 0, offset)
		if merr != nil {
			for _, prev := range mapped {
				_ = prev.Unmap()
			}
			f.Close()
			return nil, false, wrap(ErrIOError, merr)
		}
		applyMadvise(m)
		segs = append(segs, newSegment(m))
		mapped = append(mapped, m)
		offset += int64(n)
		remaining -= n
	}

	region = &Region{
		segments: segs,
		length:   size,
		file:     f,
		mapped:   mapped,
		temp:     mode == mmapTemporary,
		tempKey:  path,
	}
	return region, existingFile, nil
}

func fileHasContent(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Size() > 0
}
