package halfbuf

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/halfbuf/f16"
	"github.com/hupe1980/halfbuf/internal/compress"
	"github.com/hupe1980/halfbuf/internal/hash"
)

func sampleArray(n int) *Array {
	a, _ := New(n)
	for i := range n {
		_ = a.Set(i, float64(i%32)*0.25-4)
	}
	return a
}

func TestBlob_RoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			for _, n := range []int{0, 1, 16, 4096} {
				src := sampleArray(n)
				data, err := src.MarshalCompressed(c)
				require.NoError(t, err)

				var dst Array
				require.NoError(t, dst.UnmarshalBinary(data))
				assert.Equal(t, src.Len(), dst.Len())
				assert.Equal(t, src.Float64s(), dst.Float64s())
			}
		})
	}
}

func TestBlob_PreservesSpecialPatterns(t *testing.T) {
	src := FromBits([]f16.Bits{f16.NegZero, f16.NaN | 0x8000, f16.NegInf, f16.SmallestSubnormal, 0x7C01})
	data, err := src.MarshalBinary()
	require.NoError(t, err)

	var dst Array
	require.NoError(t, dst.UnmarshalBinary(data))
	assert.Equal(t, src.Bits(), dst.Bits())
}

func TestBlob_HeaderLayout(t *testing.T) {
	src := FromBits([]f16.Bits{0x3C00, 0xC000})
	data, err := src.MarshalBinary()
	require.NoError(t, err)

	require.Len(t, data, blobHeaderSize+4)
	assert.Equal(t, "HALF", string(data[:4]))
	assert.Equal(t, byte(blobVersion), data[4])
	assert.Equal(t, byte(0), data[5])
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(data[8:]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(data[20:]))
	// Payload is little-endian regardless of host order.
	assert.Equal(t, []byte{0x00, 0x3C, 0x00, 0xC0}, data[blobHeaderSize:])
}

func TestBlob_CompressionShrinksRepetitivePayload(t *testing.T) {
	src, err := New(8192)
	require.NoError(t, err)

	raw, err := src.MarshalBinary()
	require.NoError(t, err)
	packed, err := src.MarshalCompressed(CompressionZSTD)
	require.NoError(t, err)

	assert.Less(t, len(packed), len(raw)/4)
	assert.Equal(t, byte(CompressionZSTD), packed[5])
}

func TestBlob_BigEndianPayload(t *testing.T) {
	data, err := FromBits([]f16.Bits{0x3C00}).MarshalBinary()
	require.NoError(t, err)

	// Rewrite as a big-endian payload with a matching checksum.
	data[5] |= flagBigEndian
	data[blobHeaderSize], data[blobHeaderSize+1] = 0x3C, 0x00
	binary.LittleEndian.PutUint32(data[16:], hash.CRC32C(data[blobHeaderSize:]))

	var a Array
	require.NoError(t, a.UnmarshalBinary(data))
	v, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestBlob_Corrupt(t *testing.T) {
	good, err := sampleArray(8).MarshalBinary()
	require.NoError(t, err)

	mutate := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), good...)
		return fn(b)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"short", good[:10]},
		{"magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b })},
		{"version", mutate(func(b []byte) []byte { b[4] = 9; return b })},
		{"flags", mutate(func(b []byte) []byte { b[5] = 0x10; return b })},
		{"compression", mutate(func(b []byte) []byte { b[5] = 0x07; return b })},
		{"truncated payload", good[:len(good)-1]},
		{"count", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint64(b[8:], 9); return b })},
		{"huge count", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint64(b[8:], math.MaxUint64); return b })},
		{"checksum", mutate(func(b []byte) []byte { b[len(b)-1] ^= 0xFF; return b })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := FromFloat64s([]float64{42})
			err := a.UnmarshalBinary(tt.data)
			assert.ErrorIs(t, err, ErrCorruptBlob)

			var cbe *CorruptBlobError
			assert.True(t, errors.As(err, &cbe))

			// The receiver is unchanged on error.
			assert.Equal(t, []float64{42}, a.Float64s())
		})
	}
}

func TestBlob_CorruptCompressedFrame(t *testing.T) {
	data, err := sampleArray(4096).MarshalCompressed(CompressionLZ4)
	require.NoError(t, err)
	require.NotEqual(t, uint32(0), binary.LittleEndian.Uint32(data[blobHeaderSize+4:]), "payload should be compressed")

	// Claim a larger raw size than the element count implies.
	binary.LittleEndian.PutUint32(data[blobHeaderSize:], 1)

	var a Array
	err = a.UnmarshalBinary(data)
	assert.ErrorIs(t, err, ErrCorruptBlob)
	assert.ErrorIs(t, err, compress.ErrCorrupt)
}

func TestBlob_UnsupportedCompression(t *testing.T) {
	_, err := sampleArray(1).MarshalCompressed(Compression(9))
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("zstd")
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, c)

	_, err = ParseCompression("brotli")
	assert.Error(t, err)
}
