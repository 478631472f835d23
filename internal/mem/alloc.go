package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of every buffer returned by this package.
// 64 bytes covers cache lines and the copy alignment GPU upload paths expect.
const Alignment = 64

// AllocAligned allocates a zeroed byte slice of the given size whose first
// element sits on an Alignment boundary. It returns nil for size <= 0.
//
// The slice over-allocates by up to Alignment-1 bytes; the backing array is
// kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // alignment needs the raw address
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// AllocAlignedUint16 allocates a zeroed slice of n 16-bit words backed by
// aligned memory. It returns nil for n <= 0.
func AllocAlignedUint16[T ~uint16](n int) []T {
	if n <= 0 {
		return nil
	}
	b := AllocAligned(n * 2)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n) //nolint:gosec // aligned, size checked
}

// Uint16Bytes returns the byte view of s without copying. The view aliases
// s and is in host byte order.
func Uint16Bytes[T ~uint16](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*2) //nolint:gosec // same backing array
}
