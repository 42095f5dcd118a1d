// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so dumps can be read straight from S3 or a
// self-hosted MinIO bucket. The importer only reads (BucketExists, GetObject,
// ListObjects); the rest of the interface mirrors the client for tooling that
// stages dumps into the bucket.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "imports")
package storage
