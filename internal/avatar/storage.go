package avatar

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object under a bucket.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// UploadOptions carry per-object metadata for an upload.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// ObjectStorage is the object-store contract the avatar pipelines consume.
// Bucket management is out of scope: buckets are provisioned out of band and
// their absence is a configuration error.
type ObjectStorage interface {
	// BucketExists reports whether the bucket is reachable.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// List returns the objects whose keys start with prefix.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// Upload stores the object under key. Size may be -1 when unknown.
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, opts UploadOptions) error

	// Remove deletes the given keys. Missing keys are not an error.
	Remove(ctx context.Context, bucket string, keys []string) error

	// PublicURL resolves a browser-accessible URL for the object.
	PublicURL(ctx context.Context, bucket, key string) (string, error)
}
