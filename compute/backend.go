package compute

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/halfbuf"
	"github.com/hupe1980/halfbuf/f16"
)

// ErrShapeMismatch is returned when the operands are not both n×n.
var ErrShapeMismatch = errors.New("compute: shape mismatch")

// Backend multiplies square row-major matrices stored as halves.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	// MatMul returns a·b as n*n raw half patterns.
	MatMul(ctx context.Context, a, b *halfbuf.Array, n int) ([]f16.Bits, error)
}

func checkShape(a, b *halfbuf.Array, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: n must be positive, got %d", ErrShapeMismatch, n)
	}
	want := n * n
	if want/n != n {
		return fmt.Errorf("%w: n=%d overflows", ErrShapeMismatch, n)
	}
	if a.Len() != want || b.Len() != want {
		return fmt.Errorf("%w: want %d elements for n=%d, got %d and %d",
			ErrShapeMismatch, want, n, a.Len(), b.Len())
	}
	return nil
}

// CPU is the host reference backend.
type CPU struct {
	// HalfAccumulate rounds every partial sum to half precision, matching a
	// shader that accumulates in an f16 register. By default partial sums
	// stay in float32 and only the final cell is rounded.
	HalfAccumulate bool
}

var _ Backend = (*CPU)(nil)

// Name implements Backend.
func (c *CPU) Name() string {
	if c.HalfAccumulate {
		return "cpu-f16acc"
	}
	return "cpu"
}

// MatMul implements Backend. Cancellation is checked between rows.
func (c *CPU) MatMul(ctx context.Context, a, b *halfbuf.Array, n int) ([]f16.Bits, error) {
	if err := checkShape(a, b, n); err != nil {
		return nil, err
	}

	av, bv := a.Bits(), b.Bits()
	out := make([]f16.Bits, n*n)
	for row := range n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for col := range n {
			var sum float32
			for k := range n {
				sum += f16.ToFloat32(av[row*n+k]) * f16.ToFloat32(bv[k*n+col])
				if c.HalfAccumulate {
					sum = f16.ToFloat32(f16.FromFloat32(sum))
				}
			}
			out[row*n+col] = f16.FromFloat32(sum)
		}
	}
	return out, nil
}
