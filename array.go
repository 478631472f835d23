package halfbuf

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hupe1980/halfbuf/f16"
	"github.com/hupe1980/halfbuf/internal/mem"
	"github.com/hupe1980/halfbuf/resource"
)

// Array is a fixed-length sequence of binary16 values presented as float64.
//
// Storage is one contiguous, 64-byte aligned run of 2*Len() bytes that can
// be handed to bulk consumers through Bytes. An Array is not safe for
// concurrent mutation; callers serialize Set and writes through Bytes.
type Array struct {
	data []f16.Bits

	rc        *resource.Controller
	accounted int64
}

// New allocates an array of length elements, all +0.
//
// With WithResourceController the 2*length bytes are charged against the
// controller's memory limit until Release is called.
func New(length int, optFns ...Option) (*Array, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	o := applyOptions(optFns)
	return newArray(length, o.resourceController)
}

func newArray(length int, rc *resource.Controller) (*Array, error) {
	size := int64(length) * 2
	if err := rc.AcquireMemory(size); err != nil {
		return nil, err
	}

	a := &Array{data: mem.AllocAlignedUint16[f16.Bits](length)}
	if rc != nil {
		a.rc, a.accounted = rc, size
	}
	return a, nil
}

// FromBits adopts b as the array's storage without copying. This is how a
// readback buffer of raw half patterns becomes an Array.
func FromBits(b []f16.Bits) *Array {
	return &Array{data: b}
}

// FromBytes copies a host-endian byte buffer into a new array.
// len(b) must be even.
func FromBytes(b []byte) (*Array, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte length %d", ErrInvalidLength, len(b))
	}
	a, _ := newArray(len(b)/2, nil)
	copy(a.Bytes(), b)
	return a, nil
}

// FromFloat64s encodes values into a new array.
func FromFloat64s(values []float64) *Array {
	a, _ := newArray(len(values), nil)
	f16.EncodeSlice(a.data, values)
	return a
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.data) }

// ByteLen returns the storage size in bytes, always 2*Len().
func (a *Array) ByteLen() int { return 2 * len(a.data) }

// Get returns the decoded value at i.
func (a *Array) Get(i int) (float64, error) {
	if i < 0 || i >= len(a.data) {
		return 0, outOfRange(i, len(a.data))
	}
	return f16.Decode(a.data[i]), nil
}

// Set encodes v and stores it at i. Nothing is written on error.
func (a *Array) Set(i int, v float64) error {
	if i < 0 || i >= len(a.data) {
		return outOfRange(i, len(a.data))
	}
	a.data[i] = f16.Encode(v)
	return nil
}

// At returns the raw pattern at i.
func (a *Array) At(i int) (f16.Bits, error) {
	if i < 0 || i >= len(a.data) {
		return 0, outOfRange(i, len(a.data))
	}
	return a.data[i], nil
}

// SetBits stores a raw pattern at i.
func (a *Array) SetBits(i int, b f16.Bits) error {
	if i < 0 || i >= len(a.data) {
		return outOfRange(i, len(a.data))
	}
	a.data[i] = b
	return nil
}

// Lookup is Get for a textual index, as produced by form fields or
// property-style accessors. Only canonical decimal integers ("3", "-1") are
// indices; anything else, including "3.0" and " 3", fails with
// ErrInvalidIndex.
func (a *Array) Lookup(key string) (float64, error) {
	i, err := a.parseKey(key)
	if err != nil {
		return 0, err
	}
	return f16.Decode(a.data[i]), nil
}

// Assign is Set for a textual index. See Lookup.
func (a *Array) Assign(key string, v float64) error {
	i, err := a.parseKey(key)
	if err != nil {
		return err
	}
	a.data[i] = f16.Encode(v)
	return nil
}

func (a *Array) parseKey(key string) (int, error) {
	i, err := strconv.Atoi(key)
	if err != nil || strconv.Itoa(i) != key {
		return 0, invalidIndex(key, len(a.data))
	}
	if i < 0 || i >= len(a.data) {
		return 0, outOfRange(i, len(a.data))
	}
	return i, nil
}

// GetFloat is Get for a numeric index that arrived as a float. Fractional
// and non-finite indices fail with ErrInvalidIndex rather than being
// truncated.
func (a *Array) GetFloat(idx float64) (float64, error) {
	i, err := a.floatIndex(idx)
	if err != nil {
		return 0, err
	}
	return f16.Decode(a.data[i]), nil
}

// SetFloat is Set for a numeric index that arrived as a float. See GetFloat.
func (a *Array) SetFloat(idx, v float64) error {
	i, err := a.floatIndex(idx)
	if err != nil {
		return err
	}
	a.data[i] = f16.Encode(v)
	return nil
}

func (a *Array) floatIndex(idx float64) (int, error) {
	key := strconv.FormatFloat(idx, 'g', -1, 64)
	if math.IsNaN(idx) || math.IsInf(idx, 0) || math.Trunc(idx) != idx {
		return 0, invalidIndex(key, len(a.data))
	}
	if idx < 0 || idx >= float64(len(a.data)) {
		return 0, outOfRangeKey(key, len(a.data))
	}
	return int(idx), nil
}

// Bits returns the backing storage. Writes through the slice are visible
// to Get.
func (a *Array) Bits() []f16.Bits { return a.data }

// Bytes returns the backing storage as 2*Len() host-endian bytes without
// copying. The view aliases the array in both directions.
func (a *Array) Bytes() []byte { return mem.Uint16Bytes(a.data) }

// CopyFrom encodes src into the array starting at index 0 and returns the
// number of elements written, min(len(src), Len()).
func (a *Array) CopyFrom(src []float64) int {
	n := min(len(src), len(a.data))
	f16.EncodeSlice(a.data[:n], src[:n])
	return n
}

// Float64s returns every element decoded.
func (a *Array) Float64s() []float64 {
	out := make([]float64, len(a.data))
	f16.DecodeSlice(out, a.data)
	return out
}

// Clone returns an independent copy. The copy is not charged to any
// resource controller.
func (a *Array) Clone() *Array {
	c, _ := newArray(len(a.data), nil)
	copy(c.data, a.data)
	return c
}

// Release returns the array's memory reservation to its resource
// controller. It is idempotent and the array stays usable.
func (a *Array) Release() {
	if a.accounted > 0 {
		a.rc.ReleaseMemory(a.accounted)
		a.accounted = 0
	}
}
