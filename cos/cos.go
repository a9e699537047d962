// Package cos defines the object-storage abstraction the console manages.
// Implementations are thin pass-throughs to an S3-compatible service:
// parameter marshaling only, no storage-engine logic.
package cos

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced object does not exist.
var ErrNotFound = errors.New("cos: object not found")

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"lastModified"`
}

// FolderInfo describes a common prefix under the listing delimiter.
type FolderInfo struct {
	Prefix string `json:"prefix"`
}

// BucketInfo describes a bucket visible to the configured credentials.
type BucketInfo struct {
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creationDate"`
}

// Listing is one page of a delimited object listing.
type Listing struct {
	Files   []ObjectInfo `json:"files"`
	Folders []FolderInfo `json:"folders"`
}

// PresignMethod selects the HTTP verb a presigned URL authorizes.
type PresignMethod string

const (
	PresignGet PresignMethod = "GET"
	PresignPut PresignMethod = "PUT"
)

// DefaultPresignExpiry is the validity window for presigned URLs.
const DefaultPresignExpiry = time.Hour

// ObjectStore is the console's view of the storage provider.
type ObjectStore interface {
	ListBuckets(ctx context.Context) ([]BucketInfo, error)
	// ListObjects returns the objects and common prefixes directly under
	// prefix, using "/" as the delimiter.
	ListObjects(ctx context.Context, bucket, prefix string) (*Listing, error)
	DeleteObjects(ctx context.Context, bucket string, keys []string) error
	// RenameObject is a server-side copy followed by a delete of the
	// source; object storage has no native rename.
	RenameObject(ctx context.Context, bucket, oldKey, newKey string) error
	// CreateFolder writes the zero-byte "path/" marker object that
	// storage browsers use to materialize empty folders.
	CreateFolder(ctx context.Context, bucket, path string) error
	PresignedURL(ctx context.Context, bucket, key string, method PresignMethod, expiry time.Duration) (string, error)
}
