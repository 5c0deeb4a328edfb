//go:build unix

package voltkv

import "golang.org/x/sys/unix"

// allocateAnonymous acquires n bytes of anonymous memory via mmap,
// outside the Go heap and never scanned by the garbage collector.
func allocateAnonymous(n uint64) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func freeAnonymous(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}
