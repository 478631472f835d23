// Package minio provides a blobstore.BlobStore backed by the MinIO client.
//
// It works with MinIO itself and other S3-compatible systems (Ceph, Garage,
// SeaweedFS) without pulling in AWS credentials handling.
//
//	store, err := minio.Dial(ctx, "localhost:9000", "halves", "weights/",
//	    minio.WithStaticCredentials("minioadmin", "minioadmin"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hs := halfbuf.NewStore(store)
package minio
