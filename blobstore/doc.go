// Package blobstore abstracts where serialized half buffers live.
//
// A BlobStore holds immutable, whole-object blobs addressed by name:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and scratch buffers
//   - LocalStore: a directory on the local filesystem, read through mmap
//   - s3.Store: Amazon S3 (package blobstore/s3)
//   - minio.Store: MinIO and other S3-compatible services (package blobstore/minio)
//
// Implementations must be safe for concurrent use.
package blobstore
