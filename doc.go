// Package halfbuf stores floating point values as packed IEEE-754 binary16
// halves while presenting them as ordinary float64s.
//
// # Quick Start
//
//	arr, _ := halfbuf.New(16)
//	_ = arr.Set(3, 1.5)
//	v, _ := arr.Get(3) // 1.5
//
//	buf := arr.Bytes() // 32 host-endian bytes, zero-copy
//
// The codec itself lives in package f16:
//
//	h := f16.Encode(65504) // 0x7bff
//	f := f16.Decode(0x3c00) // 1
//
// # Indexing
//
// Get and Set take int indices and fail with ErrIndexOutOfRange outside
// [0, Len()). Indices that arrive as text (Lookup, Assign) or as floats
// (GetFloat, SetFloat) must be exact integers; anything else fails with
// ErrInvalidIndex instead of being truncated.
//
//	_, err := arr.Get(16)
//	errors.Is(err, halfbuf.ErrIndexOutOfRange) // true
//
//	_, err = arr.GetFloat(1.5)
//	errors.Is(err, halfbuf.ErrInvalidIndex) // true
//
// # Buffer Views
//
// Bytes aliases the array storage in both directions, which is how the
// buffer is handed to upload APIs. Bits exposes the same storage as raw
// patterns, and FromBits adopts a readback buffer without copying.
//
// # Persistence
//
// MarshalBinary produces a self-describing blob (magic, version, element
// count, CRC32C) with a little-endian payload. Store writes those blobs to
// any blobstore.BlobStore: memory, local disk, Amazon S3 or MinIO.
//
//	hs := halfbuf.NewStore(blobstore.NewLocalStore("./data"),
//	    halfbuf.WithCompression(halfbuf.CompressionLZ4),
//	    halfbuf.WithLogger(halfbuf.NewJSONLogger(slog.LevelInfo)),
//	)
//	_ = hs.Save(ctx, "weights.half", arr)
//	arr2, err := hs.Load(ctx, "weights.half")
//
// # Concurrency
//
// The f16 codec is pure and safe for concurrent use. An Array is a single
// mutable resource without internal locking. Store is safe for concurrent
// use and bounds its transfers with an optional resource.Controller.
package halfbuf
