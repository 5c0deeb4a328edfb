//go:build linux
// +build linux

package voltkv

import "golang.org/x/sys/unix"

// applyFadvise hints to the kernel how a freshly mapped file's pages will
// be accessed; voltkv reads and writes at scattered offsets so it favors
// random access over readahead.
func applyFadvise(fd int, size int64) {
	_ = unix.Fadvise(fd, 0, size, unix.FADV_RANDOM)
}

func applyMadvise(data []byte) {
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
}
