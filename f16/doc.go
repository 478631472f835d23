// Package f16 implements IEEE-754 binary16 (half precision) encoding and
// decoding.
//
// Encode narrows its input to float32 and rounds to nearest, ties to even.
// Decode is exact. Both functions are total and stateless, so they are safe
// for concurrent use without synchronization.
//
// Half values are a storage format only: arithmetic happens on the decoded
// float32/float64 values.
package f16
