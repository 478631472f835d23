// Package compress frames and compresses half-precision payloads with LZ4
// (fast, for hot data) or ZSTD (better ratio, for cold storage).
//
// A compressed frame is
//
//	[rawSize uint32 LE][compressedSize uint32 LE][data...]
//
// where compressedSize == 0 means data is stored uncompressed because the
// codec did not shrink it enough to be worth decoding.
package compress
