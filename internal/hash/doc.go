// Package hash provides the CRC32-Castagnoli checksums used by blob headers
// and object-store uploads. The standard library table uses SSE4.2 and the
// ARM CRC extension when available.
package hash
