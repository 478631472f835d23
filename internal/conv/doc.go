// Package conv provides checked integer conversions for values that cross a
// trust boundary, such as element counts read from a blob header.
//
// Conversions that are provably safe by construction (loop indices, lengths
// of in-memory slices) should stay plain casts.
package conv
