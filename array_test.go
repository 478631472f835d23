package halfbuf

import (
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/halfbuf/f16"
	"github.com/hupe1980/halfbuf/internal/mem"
	"github.com/hupe1980/halfbuf/resource"
)

func TestArray_Semantics(t *testing.T) {
	a, err := New(16)
	require.NoError(t, err)

	assert.Equal(t, 16, a.Len())
	assert.Equal(t, 32, a.ByteLen())
	assert.Len(t, a.Bytes(), 32)

	for i := range a.Len() {
		v, err := a.Get(i)
		require.NoError(t, err)
		assert.Zero(t, v)
		assert.False(t, math.Signbit(v))
	}

	require.NoError(t, a.Set(3, 1.5))
	v, err := a.Get(3)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	for _, i := range []int{16, -1} {
		_, err := a.Get(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		var ie *IndexError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, i, ie.Index)
		assert.Equal(t, 16, ie.Len)
	}
}

func TestArray_SetOutOfRangeWritesNothing(t *testing.T) {
	a, err := New(4)
	require.NoError(t, err)

	assert.ErrorIs(t, a.Set(4, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, a.Set(-1, 1), ErrIndexOutOfRange)
	assert.Equal(t, make([]byte, 8), a.Bytes())
}

func TestArray_PrecisionLoss(t *testing.T) {
	a, err := New(1)
	require.NoError(t, err)

	require.NoError(t, a.Set(0, 0.1))
	v, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, f16.Decode(f16.Encode(0.1)), v)
	assert.InDelta(t, 0.1, v, math.Ldexp(1, -14))
}

func TestNew_InvalidLength(t *testing.T) {
	_, err := New(-1)
	assert.ErrorIs(t, err, ErrInvalidLength)

	a, err := New(0)
	require.NoError(t, err)
	assert.Zero(t, a.Len())
	assert.Zero(t, a.ByteLen())
	assert.Empty(t, a.Bytes())
}

func TestArray_StorageAligned(t *testing.T) {
	a, err := New(33)
	require.NoError(t, err)
	addr := uintptr(unsafe.Pointer(&a.Bits()[0]))
	assert.Zero(t, addr%mem.Alignment)
}

func TestArray_BytesAlias(t *testing.T) {
	a, err := New(2)
	require.NoError(t, err)

	require.NoError(t, a.Set(1, 1))
	b := a.Bytes()
	h := *(*uint16)(unsafe.Pointer(&b[2]))
	assert.Equal(t, uint16(0x3C00), h)

	// Writes through the view are visible to Get.
	*(*uint16)(unsafe.Pointer(&b[0])) = 0xC000
	v, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, -2.0, v)
}

func TestArray_Lookup(t *testing.T) {
	a, err := New(4)
	require.NoError(t, err)
	require.NoError(t, a.Assign("2", 2.5))

	v, err := a.Lookup("2")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	tests := []struct {
		key  string
		want error
	}{
		{"4", ErrIndexOutOfRange},
		{"-1", ErrIndexOutOfRange},
		{"1.5", ErrInvalidIndex},
		{"2.0", ErrInvalidIndex},
		{"02", ErrInvalidIndex},
		{"+2", ErrInvalidIndex},
		{" 2", ErrInvalidIndex},
		{"length", ErrInvalidIndex},
		{"", ErrInvalidIndex},
		{"99999999999999999999", ErrInvalidIndex},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := a.Lookup(tt.key)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, a.Assign(tt.key, 9), tt.want)
		})
	}

	// Rejected assignments left the storage alone.
	assert.Equal(t, []float64{0, 0, 2.5, 0}, a.Float64s())
}

func TestArray_GetFloat(t *testing.T) {
	a, err := New(4)
	require.NoError(t, err)
	require.NoError(t, a.SetFloat(1, 7))

	v, err := a.GetFloat(1)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	for _, idx := range []float64{1.5, -0.5, math.NaN(), math.Inf(1)} {
		_, err := a.GetFloat(idx)
		assert.ErrorIs(t, err, ErrInvalidIndex, "idx %v", idx)
		assert.ErrorIs(t, a.SetFloat(idx, 1), ErrInvalidIndex)
	}
	for _, idx := range []float64{4, -1, 1e300} {
		_, err := a.GetFloat(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "idx %v", idx)
	}

	assert.Equal(t, []float64{0, 7, 0, 0}, a.Float64s())
}

func TestArray_RawAccess(t *testing.T) {
	a, err := New(3)
	require.NoError(t, err)

	require.NoError(t, a.SetBits(0, f16.PosInf))
	b, err := a.At(0)
	require.NoError(t, err)
	assert.Equal(t, f16.PosInf, b)

	v, err := a.Get(0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))

	_, err = a.At(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, a.SetBits(-1, 0), ErrIndexOutOfRange)
}

func TestArray_CopyFromAndFloat64s(t *testing.T) {
	a, err := New(3)
	require.NoError(t, err)

	assert.Equal(t, 3, a.CopyFrom([]float64{1, 2, 3, 4}))
	assert.Equal(t, []float64{1, 2, 3}, a.Float64s())

	assert.Equal(t, 1, a.CopyFrom([]float64{-1}))
	assert.Equal(t, []float64{-1, 2, 3}, a.Float64s())
}

func TestFromBitsAdopts(t *testing.T) {
	raw := []f16.Bits{0x3C00, 0x4000}
	a := FromBits(raw)
	assert.Equal(t, []float64{1, 2}, a.Float64s())

	raw[0] = 0x4200
	v, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestFromBytes(t *testing.T) {
	src, err := New(2)
	require.NoError(t, err)
	src.CopyFrom([]float64{0.5, -65504})

	a, err := FromBytes(src.Bytes())
	require.NoError(t, err)
	assert.Equal(t, src.Bits(), a.Bits())

	_, err = FromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestFromFloat64s(t *testing.T) {
	a := FromFloat64s([]float64{1e6, 0})
	assert.Equal(t, []f16.Bits{f16.PosInf, f16.PosZero}, a.Bits())
}

func TestArray_CloneIsIndependent(t *testing.T) {
	a := FromFloat64s([]float64{1, 2})
	c := a.Clone()
	require.NoError(t, c.Set(0, 5))

	v, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestArray_ResourceAccounting(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})

	a, err := New(16, WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(32), rc.MemoryUsage())

	_, err = New(17, WithResourceController(rc))
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(32), rc.MemoryUsage())

	a.Release()
	a.Release()
	assert.Zero(t, rc.MemoryUsage())

	_, err = New(32, WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(64), rc.MemoryUsage())
}
