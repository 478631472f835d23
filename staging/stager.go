package staging

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/halfbuf"
	"github.com/hupe1980/halfbuf/f16"
	"github.com/hupe1980/halfbuf/internal/conv"
)

// BufferWriter receives byte ranges of an array, e.g. a GPU queue that
// copies them into a storage buffer at offset.
type BufferWriter interface {
	WriteBuffer(ctx context.Context, offset int, data []byte) error
}

// Stager wraps an Array and records dirty indices in a roaring bitmap.
//
// Like the Array it wraps, a Stager is not safe for concurrent use.
type Stager struct {
	arr      *halfbuf.Array
	dirty    *roaring.Bitmap
	mergeGap uint32
}

// Option configures a Stager.
type Option func(*Stager)

// WithMergeGap merges runs separated by at most gap clean elements into a
// single write. Default: 0 (only contiguous runs merge).
func WithMergeGap(gap int) Option {
	return func(s *Stager) {
		if g, err := conv.IntToUint32(gap); err == nil {
			s.mergeGap = g
		}
	}
}

// New creates a Stager over arr with nothing marked dirty.
func New(arr *halfbuf.Array, optFns ...Option) *Stager {
	s := &Stager{
		arr:   arr,
		dirty: roaring.New(),
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Array returns the wrapped array.
func (s *Stager) Array() *halfbuf.Array { return s.arr }

// Set writes v through to the array and marks i dirty.
func (s *Stager) Set(i int, v float64) error {
	if err := s.arr.Set(i, v); err != nil {
		return err
	}
	s.dirty.Add(uint32(i)) //nolint:gosec // bounds checked by Set
	return nil
}

// SetBits writes a raw pattern and marks i dirty.
func (s *Stager) SetBits(i int, b f16.Bits) error {
	if err := s.arr.SetBits(i, b); err != nil {
		return err
	}
	s.dirty.Add(uint32(i)) //nolint:gosec // bounds checked by SetBits
	return nil
}

// Mark flags i as dirty after a write that bypassed the Stager, such as
// one through Array.Bytes.
func (s *Stager) Mark(i int) error {
	if _, err := s.arr.At(i); err != nil {
		return err
	}
	s.dirty.Add(uint32(i)) //nolint:gosec // bounds checked by At
	return nil
}

// MarkAll flags every element, forcing a full upload on the next Flush.
func (s *Stager) MarkAll() {
	s.dirty.AddRange(0, uint64(s.arr.Len()))
}

// Dirty returns the number of elements waiting to be flushed.
func (s *Stager) Dirty() int {
	return int(s.dirty.GetCardinality()) //nolint:gosec // bounded by Len
}

// Run is a half-open element range [Start, End).
type Run struct {
	Start, End int
}

// Runs returns the dirty elements coalesced into ascending runs.
func (s *Stager) Runs() []Run {
	var runs []Run
	it := s.dirty.Iterator()
	for it.HasNext() {
		i := it.Next()
		if n := len(runs); n > 0 && uint64(i) <= uint64(runs[n-1].End)+uint64(s.mergeGap) {
			runs[n-1].End = int(i) + 1
			continue
		}
		runs = append(runs, Run{Start: int(i), End: int(i) + 1})
	}
	return runs
}

// Flush writes each dirty run to w as one WriteBuffer call at the run's
// byte offset, then clears the dirty set. If a write fails the runs not yet
// written stay dirty.
func (s *Stager) Flush(ctx context.Context, w BufferWriter) error {
	buf := s.arr.Bytes()
	for _, r := range s.Runs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		off, end := 2*r.Start, 2*r.End
		if err := w.WriteBuffer(ctx, off, buf[off:end]); err != nil {
			return fmt.Errorf("staging: write [%d, %d): %w", off, end, err)
		}
		s.dirty.RemoveRange(uint64(r.Start), uint64(r.End))
	}
	return nil
}

// MemoryBuffer is an in-process BufferWriter that mirrors a device buffer.
// It is safe for concurrent use.
type MemoryBuffer struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

// NewMemoryBuffer allocates a zeroed buffer of size bytes.
func NewMemoryBuffer(size int) *MemoryBuffer {
	return &MemoryBuffer{data: make([]byte, size)}
}

// WriteBuffer implements BufferWriter.
func (b *MemoryBuffer) WriteBuffer(_ context.Context, offset int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("staging: write [%d, %d) outside buffer of %d bytes",
			offset, offset+len(data), len(b.data))
	}
	copy(b.data[offset:], data)
	b.writes++
	return nil
}

// Bytes returns a copy of the buffer contents.
func (b *MemoryBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Writes returns the number of WriteBuffer calls served.
func (b *MemoryBuffer) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}
