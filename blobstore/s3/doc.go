// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("halves/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	hs := halfbuf.NewStore(store)
//	err = hs.Save(ctx, "weights.half", arr)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads (feature/s3/manager) for blobs above the part size
//   - CRC32C integrity checksums on single-part uploads
//   - Automatic pagination for listing
package s3
