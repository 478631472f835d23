package halfbuf

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/halfbuf/blobstore"
)

// Store persists arrays as self-describing blobs in a blobstore.BlobStore.
// It is safe for concurrent use.
type Store struct {
	bs   blobstore.BlobStore
	opts options
}

// NewStore creates a Store over bs.
//
//	hs := halfbuf.NewStore(blobstore.NewLocalStore("./data"),
//	    halfbuf.WithCompression(halfbuf.CompressionZSTD),
//	)
//	err := hs.Save(ctx, "weights.half", arr)
func NewStore(bs blobstore.BlobStore, optFns ...Option) *Store {
	return &Store{
		bs:   bs,
		opts: applyOptions(optFns),
	}
}

// Save serializes a and writes it under name, replacing any previous blob.
func (s *Store) Save(ctx context.Context, name string, a *Array) (err error) {
	start := time.Now()
	size := 0
	defer func() {
		s.opts.metricsCollector.RecordSave(size, time.Since(start), err)
		s.opts.logger.LogSave(ctx, name, a.Len(), size, err)
	}()

	data, err := a.marshal(s.opts.compression)
	if err != nil {
		return err
	}
	size = len(data)

	rc := s.opts.resourceController
	if err := rc.AcquireIOSlot(ctx); err != nil {
		return err
	}
	defer rc.ReleaseIOSlot()

	if err := rc.AcquireIO(ctx, size); err != nil {
		return err
	}
	if err := s.bs.Put(ctx, name, data); err != nil {
		return fmt.Errorf("halfbuf: put %s: %w", name, err)
	}
	return nil
}

// SaveAll saves every array concurrently. Parallelism is bounded by the
// resource controller's MaxConcurrentIO, or GOMAXPROCS without one. The
// first error cancels the remaining saves.
func (s *Store) SaveAll(ctx context.Context, arrays map[string]*Array) (err error) {
	defer func() { s.opts.logger.LogSaveAll(ctx, len(arrays), err) }()

	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)

	limit := runtime.GOMAXPROCS(0)
	if rc := s.opts.resourceController; rc != nil {
		limit = int(rc.Config().MaxConcurrentIO)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, name := range names {
		g.Go(func() error {
			return s.Save(gctx, name, arrays[name])
		})
	}
	return g.Wait()
}

// Load reads and validates the blob stored under name.
//
// A missing blob yields an error matching ErrNotFound; a blob that fails
// validation yields a *CorruptBlobError.
func (s *Store) Load(ctx context.Context, name string) (a *Array, err error) {
	start := time.Now()
	size := 0
	defer func() {
		s.opts.metricsCollector.RecordLoad(size, time.Since(start), err)
		length := 0
		if a != nil {
			length = a.Len()
		}
		s.opts.logger.LogLoad(ctx, name, length, err)
	}()

	rc := s.opts.resourceController
	if err := rc.AcquireIOSlot(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseIOSlot()

	data, err := blobstore.Get(ctx, s.bs, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
		}
		return nil, fmt.Errorf("halfbuf: get %s: %w", name, err)
	}
	size = len(data)

	if err := rc.AcquireIO(ctx, size); err != nil {
		return nil, err
	}

	a, err = unmarshalArray(data, rc)
	if err != nil {
		return nil, fmt.Errorf("halfbuf: load %s: %w", name, err)
	}
	return a, nil
}

// Delete removes the blob stored under name. Deleting a missing blob is
// not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.bs.Delete(ctx, name)
	s.opts.logger.LogDelete(ctx, name, err)
	return err
}

// List returns the sorted names of stored blobs that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return s.bs.List(ctx, prefix)
}
