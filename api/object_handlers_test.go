package api_test

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungLee-coder/coshub/api"
	"github.com/YoungLee-coder/coshub/cos"
)

// fakeObjectStore is a map-backed cos.ObjectStore for handler tests.
type fakeObjectStore struct {
	objects map[string][]byte // "bucket/key" -> content
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) put(bucket, key, content string) {
	f.objects[bucket+"/"+key] = []byte(content)
}

func (f *fakeObjectStore) ListBuckets(ctx context.Context) ([]cos.BucketInfo, error) {
	seen := make(map[string]bool)
	for full := range f.objects {
		bucket, _, _ := strings.Cut(full, "/")
		seen[bucket] = true
	}
	var buckets []cos.BucketInfo
	for name := range seen {
		buckets = append(buckets, cos.BucketInfo{Name: name})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })
	return buckets, nil
}

func (f *fakeObjectStore) ListObjects(ctx context.Context, bucket, prefix string) (*cos.Listing, error) {
	listing := &cos.Listing{Files: []cos.ObjectInfo{}, Folders: []cos.FolderInfo{}}
	folders := make(map[string]bool)
	for full, content := range f.objects {
		b, key, _ := strings.Cut(full, "/")
		if b != bucket || !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			folders[prefix+rest[:i+1]] = true
			continue
		}
		listing.Files = append(listing.Files, cos.ObjectInfo{Key: key, Size: int64(len(content))})
	}
	for p := range folders {
		listing.Folders = append(listing.Folders, cos.FolderInfo{Prefix: p})
	}
	sort.Slice(listing.Files, func(i, j int) bool { return listing.Files[i].Key < listing.Files[j].Key })
	sort.Slice(listing.Folders, func(i, j int) bool { return listing.Folders[i].Prefix < listing.Folders[j].Prefix })
	return listing, nil
}

func (f *fakeObjectStore) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	for _, key := range keys {
		delete(f.objects, bucket+"/"+key)
	}
	return nil
}

func (f *fakeObjectStore) RenameObject(ctx context.Context, bucket, oldKey, newKey string) error {
	content, ok := f.objects[bucket+"/"+oldKey]
	if !ok {
		return cos.ErrNotFound
	}
	f.objects[bucket+"/"+newKey] = content
	delete(f.objects, bucket+"/"+oldKey)
	return nil
}

func (f *fakeObjectStore) CreateFolder(ctx context.Context, bucket, path string) error {
	key := strings.TrimSuffix(path, "/") + "/"
	f.objects[bucket+"/"+key] = nil
	return nil
}

func (f *fakeObjectStore) PresignedURL(ctx context.Context, bucket, key string, method cos.PresignMethod, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://fake.example.com/%s/%s?method=%s&expires=%d",
		bucket, key, method, int(expiry/time.Second)), nil
}

func setupObjectServer(t *testing.T) (*testServer, *http.Client, *fakeObjectStore) {
	t.Helper()
	store := newFakeObjectStore()
	store.put("media", "readme.txt", "hello")
	store.put("media", "photos/cat.jpg", "meow")
	store.put("media", "photos/dog.jpg", "woof")

	ts := setupServer(t, map[string]string{
		"COSHUB_ACCESS_PASSWORD": testPassword,
	}, nil, store)
	client := newClient(t)
	resp := login(t, client, ts.URL, testPassword)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return ts, client, store
}

func TestObjectRoutesRequireAuth(t *testing.T) {
	ts := setupServer(t, map[string]string{
		"COSHUB_ACCESS_PASSWORD": testPassword,
	}, nil, newFakeObjectStore())

	for _, path := range []string{"/cos/buckets", "/cos/objects?bucket=media", "/cos/cdn-domain"} {
		resp := doJSON(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/v1"+path, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestObjectRoutesWithoutBackend(t *testing.T) {
	ts := setupServer(t, map[string]string{
		"COSHUB_ACCESS_PASSWORD": testPassword,
	}, nil, nil)
	client := newClient(t)
	resp := login(t, client, ts.URL, testPassword)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/cos/buckets", nil)
	require.Equal(t, http.StatusServiceUnavailable, got.StatusCode)
	body := decodeBody[api.ErrorResponse](t, got)
	assert.Equal(t, api.CodeStoreUnavailable, body.Code)
}

func TestListBuckets(t *testing.T) {
	ts, client, _ := setupObjectServer(t)

	got := decodeBody[api.BucketsResponse](t,
		doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/cos/buckets", nil))
	require.Len(t, got.Buckets, 1)
	assert.Equal(t, "media", got.Buckets[0].Name)
}

func TestListObjects(t *testing.T) {
	ts, client, _ := setupObjectServer(t)

	got := decodeBody[api.ObjectsResponse](t,
		doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/cos/objects?bucket=media", nil))
	require.Len(t, got.Files, 1)
	assert.Equal(t, "readme.txt", got.Files[0].Key)
	require.Len(t, got.Folders, 1)
	assert.Equal(t, "photos/", got.Folders[0].Prefix)

	got = decodeBody[api.ObjectsResponse](t,
		doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/cos/objects?bucket=media&prefix=photos/", nil))
	require.Len(t, got.Files, 2)
	assert.Empty(t, got.Folders)

	resp := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/cos/objects", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListObjectsCDNEnrichment(t *testing.T) {
	store := newFakeObjectStore()
	store.put("media", "photos/cat.jpg", "meow")
	store.put("media", "photos/notes.txt", "text")

	ts := setupServer(t, map[string]string{
		"COSHUB_ACCESS_PASSWORD": testPassword,
		"COSHUB_CDN_DOMAIN":      "cdn.example.com",
	}, nil, store)
	client := newClient(t)
	resp := login(t, client, ts.URL, testPassword)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[api.ObjectsResponse](t,
		doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/cos/objects?bucket=media&prefix=photos/", nil))
	require.Len(t, got.Files, 2)

	cat, notes := got.Files[0], got.Files[1]
	assert.Equal(t, "https://cdn.example.com/photos/cat.jpg", cat.CDNURL)
	assert.Contains(t, cat.ThumbnailURL, "imageMogr2/thumbnail/280x280")
	assert.NotEmpty(t, notes.CDNURL)
	assert.Empty(t, notes.ThumbnailURL, "non-image files get no thumbnail")
}

func TestDeleteObjects(t *testing.T) {
	ts, client, store := setupObjectServer(t)

	got := decodeBody[api.DeleteObjectsResponse](t,
		doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/cos/objects", api.DeleteObjectsRequest{
			Bucket: "media",
			Keys:   []string{"photos/cat.jpg", "photos/dog.jpg"},
		}))
	assert.Equal(t, 2, got.Deleted)
	assert.NotContains(t, store.objects, "media/photos/cat.jpg")
	assert.Contains(t, store.objects, "media/readme.txt")

	resp := doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/cos/objects",
		api.DeleteObjectsRequest{Bucket: "media"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRenameObject(t *testing.T) {
	ts, client, store := setupObjectServer(t)

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/cos/objects/rename",
		api.RenameObjectRequest{Bucket: "media", OldKey: "readme.txt", NewKey: "docs/readme.txt"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, store.objects, "media/docs/readme.txt")
	assert.NotContains(t, store.objects, "media/readme.txt")

	missing := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/cos/objects/rename",
		api.RenameObjectRequest{Bucket: "media", OldKey: "ghost.txt", NewKey: "still-ghost.txt"})
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
	body := decodeBody[api.ErrorResponse](t, missing)
	assert.Equal(t, api.CodeNotFound, body.Code)

	same := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/cos/objects/rename",
		api.RenameObjectRequest{Bucket: "media", OldKey: "a.txt", NewKey: "a.txt"})
	defer same.Body.Close()
	assert.Equal(t, http.StatusBadRequest, same.StatusCode)
}

func TestCreateFolder(t *testing.T) {
	ts, client, store := setupObjectServer(t)

	got := decodeBody[api.CreateFolderResponse](t,
		doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/cos/folders",
			api.CreateFolderRequest{Bucket: "media", Path: "uploads"}))
	assert.Equal(t, "uploads/", got.Key)
	assert.Contains(t, store.objects, "media/uploads/")

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/cos/folders",
		api.CreateFolderRequest{Bucket: "media", Path: "///"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPresignedURL(t *testing.T) {
	ts, client, _ := setupObjectServer(t)

	got := decodeBody[api.PresignedURLResponse](t,
		doJSON(t, client, http.MethodGet,
			ts.URL+"/api/v1/cos/url?bucket=media&key=readme.txt", nil))
	assert.Contains(t, got.URL, "media/readme.txt")
	assert.Equal(t, 3600, got.ExpiresIn)

	got = decodeBody[api.PresignedURLResponse](t,
		doJSON(t, client, http.MethodGet,
			ts.URL+"/api/v1/cos/url?bucket=media&key=readme.txt&method=PUT&expires=600", nil))
	assert.Contains(t, got.URL, "method=PUT")
	assert.Equal(t, 600, got.ExpiresIn)

	for _, q := range []string{
		"bucket=media&key=readme.txt&method=PATCH",
		"bucket=media&key=readme.txt&expires=0",
		"bucket=media&key=readme.txt&expires=90000",
		"bucket=media",
	} {
		resp := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/cos/url?"+q, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestCDNDomain(t *testing.T) {
	ts := setupServer(t, map[string]string{
		"COSHUB_ACCESS_PASSWORD": testPassword,
		"COSHUB_CDN_DOMAIN":      "cdn.example.com",
	}, nil, newFakeObjectStore())
	client := newClient(t)
	resp := login(t, client, ts.URL, testPassword)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[api.CDNDomainResponse](t,
		doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/cos/cdn-domain", nil))
	assert.Equal(t, "cdn.example.com", got.Domain)
	assert.Equal(t, "env", got.Source)
}
