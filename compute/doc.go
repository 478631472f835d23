// Package compute dispatches matrix multiplies over half-precision arrays.
//
// A Backend takes two n×n row-major arrays and returns the product as raw
// half patterns, the same shape of result a GPU readback buffer has. CPU is
// the host reference backend; Multiplier wraps any backend with logging and
// metrics and turns the readback into a halfbuf.Array.
package compute
