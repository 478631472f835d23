package compute

import (
	"context"
	"time"

	"github.com/hupe1980/halfbuf"
)

// Multiplier runs matrix multiplies on a Backend.
// It is safe for concurrent use if the backend is.
type Multiplier struct {
	backend Backend
	logger  *halfbuf.Logger
	metrics halfbuf.MetricsCollector
}

// Option configures a Multiplier.
type Option func(*Multiplier)

// WithLogger sets the logger. Default: halfbuf.NoopLogger().
func WithLogger(l *halfbuf.Logger) Option {
	return func(m *Multiplier) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc halfbuf.MetricsCollector) Option {
	return func(m *Multiplier) {
		if mc != nil {
			m.metrics = mc
		}
	}
}

// NewMultiplier creates a Multiplier over backend. A nil backend selects CPU.
func NewMultiplier(backend Backend, optFns ...Option) *Multiplier {
	if backend == nil {
		backend = &CPU{}
	}
	m := &Multiplier{
		backend: backend,
		logger:  halfbuf.NoopLogger(),
		metrics: halfbuf.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(m)
	}
	return m
}

// Backend returns the wrapped backend.
func (m *Multiplier) Backend() Backend { return m.backend }

// MatMul multiplies two n×n row-major arrays and adopts the backend's
// readback as the result array.
func (m *Multiplier) MatMul(ctx context.Context, a, b *halfbuf.Array, n int) (*halfbuf.Array, error) {
	start := time.Now()
	out, err := m.backend.MatMul(ctx, a, b, n)
	m.metrics.RecordMatMul(n, time.Since(start), err)
	m.logger.LogMatMul(ctx, m.backend.Name(), n, err)
	if err != nil {
		return nil, err
	}
	return halfbuf.FromBits(out), nil
}

// MatMulFloat64 encodes a and b to halves, multiplies them and decodes the
// product.
func (m *Multiplier) MatMulFloat64(ctx context.Context, a, b []float64, n int) ([]float64, error) {
	c, err := m.MatMul(ctx, halfbuf.FromFloat64s(a), halfbuf.FromFloat64s(b), n)
	if err != nil {
		return nil, err
	}
	return c.Float64s(), nil
}
