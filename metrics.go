package halfbuf

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSave is called after each Store.Save. size is the blob size in
	// bytes, err is nil if successful.
	RecordSave(size int, duration time.Duration, err error)

	// RecordLoad is called after each Store.Load.
	RecordLoad(size int, duration time.Duration, err error)

	// RecordMatMul is called after each matrix multiply of two n×n matrices.
	RecordMatMul(n int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSave(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordMatMul(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SaveCount        atomic.Int64
	SaveErrors       atomic.Int64
	SaveBytes        atomic.Int64
	SaveTotalNanos   atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadBytes        atomic.Int64
	LoadTotalNanos   atomic.Int64
	MatMulCount      atomic.Int64
	MatMulErrors     atomic.Int64
	MatMulCells      atomic.Int64
	MatMulTotalNanos atomic.Int64
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(size int, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(int64(size))
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(size int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(int64(size))
}

// RecordMatMul implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatMul(n int, duration time.Duration, err error) {
	b.MatMulCount.Add(1)
	b.MatMulTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MatMulErrors.Add(1)
		return
	}
	b.MatMulCells.Add(int64(n) * int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SaveCount:      b.SaveCount.Load(),
		SaveErrors:     b.SaveErrors.Load(),
		SaveBytes:      b.SaveBytes.Load(),
		SaveAvgNanos:   avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadBytes:      b.LoadBytes.Load(),
		LoadAvgNanos:   avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		MatMulCount:    b.MatMulCount.Load(),
		MatMulErrors:   b.MatMulErrors.Load(),
		MatMulCells:    b.MatMulCells.Load(),
		MatMulAvgNanos: avg(b.MatMulTotalNanos.Load(), b.MatMulCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SaveCount      int64
	SaveErrors     int64
	SaveBytes      int64
	SaveAvgNanos   int64
	LoadCount      int64
	LoadErrors     int64
	LoadBytes      int64
	LoadAvgNanos   int64
	MatMulCount    int64
	MatMulErrors   int64
	MatMulCells    int64
	MatMulAvgNanos int64
}
