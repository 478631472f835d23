package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a compression algorithm. The numeric values are persisted.
type Type uint8

const (
	// None stores payloads as-is, without a frame.
	None Type = 0
	// LZ4 uses LZ4 block compression.
	LZ4 Type = 1
	// ZSTD uses Zstandard at the default level.
	ZSTD Type = 2
)

// ErrCorrupt is returned when a frame cannot be decoded.
var ErrCorrupt = errors.New("compress: corrupt frame")

const frameHeaderSize = 8

// minSavings is the fraction a codec must shave off before the compressed
// form is kept.
const minSavings = 0.9

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// Valid reports whether t is a known algorithm.
func (t Type) Valid() bool { return t <= ZSTD }

// ParseType parses "none", "lz4" or "zstd" (case-insensitive).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("compress: unknown type %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Compress returns data framed and compressed with t. For None the input is
// returned unchanged.
func Compress(data []byte, t Type) ([]byte, error) {
	if t == None {
		return data, nil
	}

	var (
		compressed []byte
		err        error
	)
	switch t {
	case LZ4:
		compressed, err = compressLZ4(data)
	case ZSTD:
		compressed, err = compressZSTD(data)
	default:
		return nil, fmt.Errorf("compress: unsupported type %s", t)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*minSavings {
		return frame(data, uint32(len(data)), 0), nil
	}
	return frame(compressed, uint32(len(data)), uint32(len(compressed))), nil
}

func frame(payload []byte, rawSize, compressedSize uint32) []byte {
	out := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], rawSize)
	binary.LittleEndian.PutUint32(out[4:], compressedSize)
	copy(out[frameHeaderSize:], payload)
	return out
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	// n == 0 means incompressible.
	return dst[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

// Decompress reverses Compress for the same t.
func Decompress(data []byte, t Type) ([]byte, error) {
	if t == None {
		return data, nil
	}
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the frame header", ErrCorrupt, len(data))
	}

	rawSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	body := data[frameHeaderSize:]

	if compressedSize == 0 {
		if uint64(len(body)) != uint64(rawSize) {
			return nil, fmt.Errorf("%w: stored frame has %d bytes, header says %d", ErrCorrupt, len(body), rawSize)
		}
		return body, nil
	}
	if uint64(len(body)) != uint64(compressedSize) {
		return nil, fmt.Errorf("%w: compressed frame has %d bytes, header says %d", ErrCorrupt, len(body), compressedSize)
	}

	out := make([]byte, rawSize)
	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint32(n) != rawSize {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", ErrCorrupt, n, rawSize)
		}
		return out, nil
	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(body, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != rawSize {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, want %d", ErrCorrupt, len(decoded), rawSize)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("compress: unsupported type %s", t)
	}
}
