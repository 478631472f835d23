package halfbuf

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/halfbuf/f16"
	"github.com/hupe1980/halfbuf/internal/compress"
	"github.com/hupe1980/halfbuf/internal/conv"
	"github.com/hupe1980/halfbuf/internal/hash"
	"github.com/hupe1980/halfbuf/resource"
)

// Compression selects the block codec applied to a serialized payload.
type Compression = compress.Type

// Supported compression codecs.
const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) { return compress.ParseType(s) }

// Blob layout (all fields little-endian):
//
//	[0:4]   magic "HALF"
//	[4]     version
//	[5]     flags: bits 0-3 compression, bit 7 big-endian payload
//	[6:8]   reserved, zero
//	[8:16]  element count
//	[16:20] CRC32C of the uncompressed payload
//	[20:24] stored payload length
//	[24:]   payload, 2 bytes per element, optionally framed by internal/compress
const (
	blobMagic      = "HALF"
	blobVersion    = 1
	blobHeaderSize = 24

	flagCompressionMask = 0x0F
	flagBigEndian       = 0x80
)

// MarshalBinary implements encoding.BinaryMarshaler. The payload is written
// little-endian and uncompressed.
func (a *Array) MarshalBinary() ([]byte, error) {
	return a.marshal(CompressionNone)
}

// MarshalCompressed is MarshalBinary with a block codec applied to the
// payload. Payloads that do not shrink enough are stored raw.
func (a *Array) MarshalCompressed(c Compression) ([]byte, error) {
	return a.marshal(c)
}

func (a *Array) marshal(c Compression) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("halfbuf: unsupported compression %s", c)
	}

	payload := make([]byte, a.ByteLen())
	for i, h := range a.data {
		binary.LittleEndian.PutUint16(payload[2*i:], uint16(h))
	}
	sum := hash.CRC32C(payload)

	stored, err := compress.Compress(payload, c)
	if err != nil {
		return nil, fmt.Errorf("halfbuf: compress payload: %w", err)
	}
	storedLen, err := conv.IntToUint32(len(stored))
	if err != nil {
		return nil, fmt.Errorf("halfbuf: payload of %d bytes: %w", len(stored), err)
	}

	out := make([]byte, blobHeaderSize+len(stored))
	copy(out, blobMagic)
	out[4] = blobVersion
	out[5] = byte(c)
	binary.LittleEndian.PutUint64(out[8:], uint64(len(a.data)))
	binary.LittleEndian.PutUint32(out[16:], sum)
	binary.LittleEndian.PutUint32(out[20:], storedLen)
	copy(out[blobHeaderSize:], stored)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The array's
// storage is replaced by the decoded contents; on error it is unchanged.
func (a *Array) UnmarshalBinary(data []byte) error {
	decoded, err := unmarshalArray(data, a.rc)
	if err != nil {
		return err
	}
	a.Release()
	*a = *decoded
	return nil
}

func unmarshalArray(data []byte, rc *resource.Controller) (*Array, error) {
	if len(data) < blobHeaderSize {
		return nil, corrupt(fmt.Sprintf("%d bytes is shorter than the header", len(data)), nil)
	}
	if string(data[:4]) != blobMagic {
		return nil, corrupt(fmt.Sprintf("bad magic %q", data[:4]), nil)
	}
	if v := data[4]; v != blobVersion {
		return nil, corrupt(fmt.Sprintf("unsupported version %d", v), nil)
	}

	flags := data[5]
	c := Compression(flags & flagCompressionMask)
	if flags&^(flagCompressionMask|flagBigEndian) != 0 || !c.Valid() {
		return nil, corrupt(fmt.Sprintf("unknown flags 0x%02x", flags), nil)
	}
	var order binary.ByteOrder = binary.LittleEndian
	if flags&flagBigEndian != 0 {
		order = binary.BigEndian
	}

	count := binary.LittleEndian.Uint64(data[8:])
	sum := binary.LittleEndian.Uint32(data[16:])
	storedLen := binary.LittleEndian.Uint32(data[20:])

	stored := data[blobHeaderSize:]
	if uint64(len(stored)) != uint64(storedLen) {
		return nil, corrupt(fmt.Sprintf("payload is %d bytes, header says %d", len(stored), storedLen), nil)
	}
	if count > math.MaxInt/2 {
		return nil, corrupt(fmt.Sprintf("element count %d too large", count), nil)
	}
	n := int(count)

	payload, err := compress.Decompress(stored, c)
	if err != nil {
		return nil, corrupt("decompress payload", err)
	}
	if len(payload) != 2*n {
		return nil, corrupt(fmt.Sprintf("payload is %d bytes, want %d for %d elements", len(payload), 2*n, n), nil)
	}
	if got := hash.CRC32C(payload); got != sum {
		return nil, corrupt(fmt.Sprintf("checksum mismatch: got %08x, want %08x", got, sum), nil)
	}

	a, err := newArray(n, rc)
	if err != nil {
		return nil, err
	}
	for i := range a.data {
		a.data[i] = f16.Bits(order.Uint16(payload[2*i:]))
	}
	return a, nil
}
