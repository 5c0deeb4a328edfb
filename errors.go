package voltkv

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Sentinel errors for the store's failure taxonomy (spec §7). Callers
// compare with errors.Is; wrap() below keeps that working while still
// attaching a captured stack trace for the I/O-boundary failures the
// teacher wraps with go-errors.
var (
	ErrInvalidKey        = errors.New("voltkv: invalid key")
	ErrInvalidSize       = errors.New("voltkv: invalid size")
	ErrAllocationFailed  = errors.New("voltkv: allocation failed")
	ErrOutOfSpace        = errors.New("voltkv: out of space")
	ErrCodecError        = errors.New("voltkv: codec error")
	ErrIncompatibleFile  = errors.New("voltkv: incompatible file")
	ErrIncompatibleIndex = errors.New("voltkv: incompatible index")
	ErrIOError           = errors.New("voltkv: io error")
	ErrAlreadyClosed     = errors.New("voltkv: already closed")
	ErrConfig            = errors.New("voltkv: invalid configuration")
)

// wrap tags cause with sentinel so errors.Is(result, sentinel) succeeds,
// while keeping a go-errors stack trace in the message for diagnostics,
// mirroring the teacher's errors.Wrap(err, 1) calls in mmap.go/slab.go.
func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	stack := goerrors.Wrap(cause, 1)
	return fmt.Errorf("%w: %s", sentinel, stack.ErrorStack())
}
