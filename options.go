package halfbuf

import (
	"log/slog"

	"github.com/hupe1980/halfbuf/resource"
)

type options struct {
	logger             *Logger
	metricsCollector   MetricsCollector
	compression        Compression
	resourceController *resource.Controller
}

// Option configures arrays and stores.
//
// Arrays only read the resource controller; the remaining options apply to
// Store.
type Option func(*options)

// WithLogger configures structured logging for store operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := halfbuf.NewJSONLogger(slog.LevelInfo)
//	store := halfbuf.NewStore(bs, halfbuf.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
//	metrics := &halfbuf.BasicMetricsCollector{}
//	store := halfbuf.NewStore(bs, halfbuf.WithMetricsCollector(metrics))
//	// ...
//	stats := metrics.GetStats()
//	fmt.Printf("Saves: %d, %d bytes\n", stats.SaveCount, stats.SaveBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCompression sets the payload codec used by Store.Save.
// Default: CompressionNone.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController bounds memory, concurrent transfers and transfer
// bandwidth.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   64 << 20,
//	    MaxConcurrentIO:    4,
//	    IOLimitBytesPerSec: 32 << 20,
//	})
//	arr, err := halfbuf.New(1<<20, halfbuf.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		compression:      CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
