package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when an allocation would exceed the
// configured memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits. Zero values mean "no limit", except
// MaxConcurrentIO which defaults to 1.
type Config struct {
	// MemoryLimitBytes caps the bytes of half storage accounted at once.
	MemoryLimitBytes int64

	// MaxConcurrentIO caps concurrent blob transfers.
	MaxConcurrentIO int64

	// IOLimitBytesPerSec caps transfer bandwidth.
	IOLimitBytesPerSec int64
}

// Controller enforces a Config. It is safe for concurrent use.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	ioSem *semaphore.Weighted

	ioLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentIO <= 0 {
		cfg.MaxConcurrentIO = 1
	}

	c := &Controller{
		cfg:   cfg,
		ioSem: semaphore.NewWeighted(cfg.MaxConcurrentIO),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory reserves n bytes or fails immediately with
// ErrMemoryLimitExceeded.
func (c *Controller) AcquireMemory(n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.memSem != nil && !c.memSem.TryAcquire(n) {
		return fmt.Errorf("%w: requested %d bytes, %d of %d in use",
			ErrMemoryLimitExceeded, n, c.memUsed.Load(), c.cfg.MemoryLimitBytes)
	}
	c.memUsed.Add(n)
	return nil
}

// ReleaseMemory returns n bytes reserved by AcquireMemory.
func (c *Controller) ReleaseMemory(n int64) {
	if c == nil || n <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(n)
	}
	c.memUsed.Add(-n)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireIOSlot blocks until a transfer slot is free.
func (c *Controller) AcquireIOSlot(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.ioSem.Acquire(ctx, 1)
}

// TryAcquireIOSlot takes a transfer slot if one is free.
func (c *Controller) TryAcquireIOSlot() bool {
	if c == nil {
		return true
	}
	return c.ioSem.TryAcquire(1)
}

// ReleaseIOSlot frees a slot taken by AcquireIOSlot or TryAcquireIOSlot.
func (c *Controller) ReleaseIOSlot() {
	if c == nil {
		return
	}
	c.ioSem.Release(1)
}

// AcquireIO waits until n bytes of bandwidth are available. Requests larger
// than the limiter burst are split into burst-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil || n <= 0 {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
