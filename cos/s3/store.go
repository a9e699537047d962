// Package s3 implements cos.ObjectStore against any S3-compatible
// endpoint via the MinIO client.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/YoungLee-coder/coshub/cos"
)

// Config controls the S3 object store.
type Config struct {
	Endpoint       string
	Region         string
	AccessKey      string
	SecretKey      string
	Insecure       bool
	ForcePathStyle bool
}

// Store implements cos.ObjectStore backed by S3-compatible object storage.
type Store struct {
	client *minio.Client
}

var _ cos.ObjectStore = (*Store)(nil)

// New creates a Store. When no static keys are configured, the standard
// environment/instance credential chain is used.
func New(cfg Config) (*Store, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.Region != "" {
			endpoint = fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region)
		} else {
			endpoint = "s3.amazonaws.com"
		}
	}
	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{},
		})
	}
	options := &minio.Options{
		Creds:  creds,
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	}
	if cfg.ForcePathStyle {
		options.BucketLookup = minio.BucketLookupPath
	}
	client, err := minio.New(endpoint, options)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) ListBuckets(ctx context.Context) ([]cos.BucketInfo, error) {
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3: list buckets: %w", err)
	}
	out := make([]cos.BucketInfo, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, cos.BucketInfo{Name: b.Name, CreationDate: b.CreationDate})
	}
	return out, nil
}

func (s *Store) ListObjects(ctx context.Context, bucket, prefix string) (*cos.Listing, error) {
	listing := &cos.Listing{
		Files:   []cos.ObjectInfo{},
		Folders: []cos.FolderInfo{},
	}
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("s3: list objects: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			// The marker object for the listed prefix itself is noise,
			// everything else ending in "/" is a sub-folder.
			if obj.Key != prefix {
				listing.Folders = append(listing.Folders, cos.FolderInfo{Prefix: obj.Key})
			}
			continue
		}
		listing.Files = append(listing.Files, cos.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         stripETag(obj.ETag),
			LastModified: obj.LastModified,
		})
	}
	sort.Slice(listing.Files, func(i, j int) bool { return listing.Files[i].Key < listing.Files[j].Key })
	sort.Slice(listing.Folders, func(i, j int) bool { return listing.Folders[i].Prefix < listing.Folders[j].Prefix })
	return listing, nil
}

func (s *Store) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	if len(keys) == 1 {
		if err := s.client.RemoveObject(ctx, bucket, keys[0], minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("s3: remove object %s: %w", keys[0], err)
		}
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	for rmErr := range s.client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil {
			return fmt.Errorf("s3: remove object %s: %w", rmErr.ObjectName, rmErr.Err)
		}
	}
	return nil
}

func (s *Store) RenameObject(ctx context.Context, bucket, oldKey, newKey string) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: newKey},
		minio.CopySrcOptions{Bucket: bucket, Object: oldKey},
	)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s: %w", oldKey, cos.ErrNotFound)
		}
		return fmt.Errorf("s3: copy %s -> %s: %w", oldKey, newKey, err)
	}
	if err := s.client.RemoveObject(ctx, bucket, oldKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("s3: remove source %s: %w", oldKey, err)
	}
	return nil
}

func (s *Store) CreateFolder(ctx context.Context, bucket, path string) error {
	marker := strings.TrimSuffix(path, "/") + "/"
	_, err := s.client.PutObject(ctx, bucket, marker, bytes.NewReader(nil), 0,
		minio.PutObjectOptions{ContentType: "application/x-directory"})
	if err != nil {
		return fmt.Errorf("s3: create folder %s: %w", marker, err)
	}
	return nil
}

func (s *Store) PresignedURL(ctx context.Context, bucket, key string, method cos.PresignMethod, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = cos.DefaultPresignExpiry
	}
	switch method {
	case cos.PresignGet:
		u, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
		if err != nil {
			return "", fmt.Errorf("s3: presign get %s: %w", key, err)
		}
		return u.String(), nil
	case cos.PresignPut:
		u, err := s.client.PresignedPutObject(ctx, bucket, key, expiry)
		if err != nil {
			return "", fmt.Errorf("s3: presign put %s: %w", key, err)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("s3: unsupported presign method %q", method)
	}
}

func stripETag(etag string) string {
	return strings.Trim(etag, `"`)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
