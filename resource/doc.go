// Package resource bounds what halfbuf may consume: memory held by half
// buffers, the number of concurrent blob uploads, and upload bandwidth.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:    64 << 20,
//	    MaxConcurrentIO:     4,
//	    IOLimitBytesPerSec:  32 << 20,
//	})
//
// Memory accounting is fail-fast (AcquireMemory never blocks). Worker slots
// and IO tokens block until available or the context is done.
//
// A nil *Controller is valid and imposes no limits.
package resource
