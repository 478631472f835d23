// Package mmap maps local blob files read-only so half buffers can be decoded
// straight out of the page cache.
//
// On Unix the file is mapped with mmap(2). Elsewhere the file is read into
// memory, which keeps the API identical at the cost of a copy.
package mmap
