package halfbuf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/halfbuf/blobstore"
	"github.com/hupe1980/halfbuf/resource"
)

func TestStore_RoundTrip(t *testing.T) {
	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for name, bs := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
				hs := NewStore(bs, WithCompression(c))
				src := sampleArray(1024)
				blobName := "arrays/" + c.String() + ".half"

				require.NoError(t, hs.Save(ctx, blobName, src))

				got, err := hs.Load(ctx, blobName)
				require.NoError(t, err)
				assert.Equal(t, src.Bits(), got.Bits())
			}

			names, err := NewStore(bs).List(ctx, "arrays/")
			require.NoError(t, err)
			assert.Equal(t, []string{"arrays/lz4.half", "arrays/none.half", "arrays/zstd.half"}, names)
		})
	}
}

func TestStore_LoadNotFound(t *testing.T) {
	hs := NewStore(blobstore.NewMemoryStore())

	_, err := hs.Load(context.Background(), "missing.half")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "bad.half", []byte("not a half blob at all, really")))

	_, err := NewStore(bs).Load(ctx, "bad.half")
	assert.ErrorIs(t, err, ErrCorruptBlob)

	var cbe *CorruptBlobError
	assert.True(t, errors.As(err, &cbe))
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	hs := NewStore(blobstore.NewMemoryStore())

	require.NoError(t, hs.Save(ctx, "a.half", sampleArray(4)))
	require.NoError(t, hs.Delete(ctx, "a.half"))
	require.NoError(t, hs.Delete(ctx, "a.half"))

	_, err := hs.Load(ctx, "a.half")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveAll(t *testing.T) {
	ctx := context.Background()
	bs := &countingStore{BlobStore: blobstore.NewMemoryStore()}
	rc := resource.NewController(resource.Config{MaxConcurrentIO: 2})
	hs := NewStore(bs, WithResourceController(rc))

	arrays := make(map[string]*Array)
	for i := range 10 {
		arrays[fmt.Sprintf("batch/%02d.half", i)] = sampleArray(64 + i)
	}

	require.NoError(t, hs.SaveAll(ctx, arrays))
	assert.LessOrEqual(t, bs.maxInFlight.Load(), int64(2))

	for name, want := range arrays {
		got, err := hs.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, want.Bits(), got.Bits(), name)
	}
}

func TestStore_SaveAllStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	hs := NewStore(&failingStore{err: boom})

	err := hs.SaveAll(context.Background(), map[string]*Array{
		"a": sampleArray(1),
		"b": sampleArray(1),
	})
	assert.ErrorIs(t, err, boom)
}

func TestStore_LoadChargesMemory(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, NewStore(bs).Save(ctx, "big.half", sampleArray(64)))

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	hs := NewStore(bs, WithResourceController(rc))

	_, err := hs.Load(ctx, "big.half")
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

	require.NoError(t, NewStore(bs).Save(ctx, "small.half", sampleArray(16)))
	a, err := hs.Load(ctx, "small.half")
	require.NoError(t, err)
	assert.Equal(t, int64(32), rc.MemoryUsage())
	a.Release()
	assert.Zero(t, rc.MemoryUsage())
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := resource.NewController(resource.Config{MaxConcurrentIO: 1})
	require.True(t, rc.TryAcquireIOSlot())
	defer rc.ReleaseIOSlot()

	hs := NewStore(blobstore.NewMemoryStore(), WithResourceController(rc))
	assert.ErrorIs(t, hs.Save(ctx, "a.half", sampleArray(1)), context.Canceled)
}

func TestStore_MetricsAndLogging(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}

	hs := NewStore(blobstore.NewMemoryStore(),
		WithLogger(logger),
		WithMetricsCollector(metrics),
	)

	require.NoError(t, hs.Save(ctx, "m.half", sampleArray(8)))
	_, err := hs.Load(ctx, "m.half")
	require.NoError(t, err)
	_, err = hs.Load(ctx, "missing.half")
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.SaveCount)
	assert.Equal(t, int64(blobHeaderSize+16), stats.SaveBytes)
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, int64(blobHeaderSize+16), stats.LoadBytes)

	out := buf.String()
	assert.Contains(t, out, `"msg":"save completed"`)
	assert.Contains(t, out, `"msg":"load completed"`)
	assert.Contains(t, out, `"msg":"load failed"`)
	assert.Contains(t, out, `"name":"missing.half"`)
}

func TestStore_NilOptionsFallBackToNoop(t *testing.T) {
	hs := NewStore(blobstore.NewMemoryStore(), WithLogger(nil), WithMetricsCollector(nil), nil)
	require.NoError(t, hs.Save(context.Background(), "a.half", sampleArray(1)))
}

type countingStore struct {
	blobstore.BlobStore
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (s *countingStore) Put(ctx context.Context, name string, data []byte) error {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxInFlight.Load()
		if n <= m || s.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	return s.BlobStore.Put(ctx, name, data)
}

type failingStore struct {
	blobstore.BlobStore
	err error
}

func (s *failingStore) Put(context.Context, string, []byte) error { return s.err }
