package halfbuf

import (
	"errors"
	"fmt"

	"github.com/hupe1980/halfbuf/resource"
)

var (
	// ErrIndexOutOfRange is returned when an integer index falls outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidIndex is returned for fractional, non-finite or non-numeric
	// indices. Such indices are rejected, never truncated.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrInvalidLength is returned for negative lengths and odd byte counts.
	ErrInvalidLength = errors.New("invalid length")

	// ErrCorruptBlob is returned when a serialized array fails validation.
	ErrCorruptBlob = errors.New("corrupt blob")

	// ErrNotFound is returned when a named array does not exist in a Store.
	ErrNotFound = errors.New("not found")

	// ErrMemoryLimitExceeded is returned when allocating an array would
	// exceed the resource controller's memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// IndexError describes a rejected element access.
//
// It matches ErrIndexOutOfRange or ErrInvalidIndex via errors.Is.
type IndexError struct {
	// Index is the integer index, valid when Key is empty.
	Index int
	// Key is the textual form of a non-integer index.
	Key string
	// Len is the array length at the time of the access.
	Len   int
	cause error
}

func (e *IndexError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%v: %q (length %d)", e.cause, e.Key, e.Len)
	}
	return fmt.Sprintf("%v: %d not in [0, %d)", e.cause, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return e.cause }

func outOfRange(i, n int) error {
	return &IndexError{Index: i, Len: n, cause: ErrIndexOutOfRange}
}

func outOfRangeKey(key string, n int) error {
	return &IndexError{Key: key, Len: n, cause: ErrIndexOutOfRange}
}

func invalidIndex(key string, n int) error {
	return &IndexError{Key: key, Len: n, cause: ErrInvalidIndex}
}

// CorruptBlobError describes a serialized array that failed validation.
//
// It always matches ErrCorruptBlob; the underlying error (if any) is
// available via errors.Unwrap.
type CorruptBlobError struct {
	Reason string
	cause  error
}

func (e *CorruptBlobError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("corrupt blob: %s: %v", e.Reason, e.cause)
	}
	return "corrupt blob: " + e.Reason
}

func (e *CorruptBlobError) Unwrap() error { return e.cause }

// Is reports whether target is ErrCorruptBlob.
func (e *CorruptBlobError) Is(target error) bool { return target == ErrCorruptBlob }

func corrupt(reason string, cause error) error {
	return &CorruptBlobError{Reason: reason, cause: cause}
}
