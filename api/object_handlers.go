package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YoungLee-coder/coshub/cos"
	"github.com/YoungLee-coder/coshub/settings"
)

// requireObjects guards the /cos routes against a deployment with no
// storage credentials configured.
func (a *API) requireObjects(w http.ResponseWriter) bool {
	if a.objects == nil {
		writeError(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "object storage is not configured")
		return false
	}
	return true
}

func (a *API) ListBuckets(w http.ResponseWriter, r *http.Request) {
	if !a.requireObjects(w) {
		return
	}
	buckets, err := a.objects.ListBuckets(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BucketsResponse{Buckets: buckets})
}

func (a *API) ListObjects(w http.ResponseWriter, r *http.Request) {
	if !a.requireObjects(w) {
		return
	}
	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "bucket is required")
		return
	}
	prefix := r.URL.Query().Get("prefix")

	ctx := r.Context()
	listing, err := a.objects.ListObjects(ctx, bucket, prefix)
	if err != nil {
		mapError(w, err)
		return
	}

	domain := a.resolver.Resolve(ctx, settings.CDNDomain).Value
	files := make([]ObjectItem, 0, len(listing.Files))
	for _, f := range listing.Files {
		item := ObjectItem{ObjectInfo: f}
		if domain != "" {
			item.CDNURL = cos.BuildCDNURL(domain, f.Key)
			if cos.ThumbnailSupported(f.Key) {
				item.ThumbnailURL = cos.ThumbnailURL(item.CDNURL, f.ETag, 0)
			}
		}
		files = append(files, item)
	}

	writeJSON(w, http.StatusOK, ObjectsResponse{
		Bucket:  bucket,
		Prefix:  prefix,
		Folders: listing.Folders,
		Files:   files,
	})
}

func (a *API) DeleteObjects(w http.ResponseWriter, r *http.Request) {
	if !a.requireObjects(w) {
		return
	}
	req, ok := decodeJSON[DeleteObjectsRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}
	if req.Bucket == "" || len(req.Keys) == 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "bucket and keys are required")
		return
	}

	if err := a.objects.DeleteObjects(r.Context(), req.Bucket, req.Keys); err != nil {
		mapError(w, err)
		return
	}
	a.audit.log(AuditObjectsDeleted, r,
		slog.String("bucket", req.Bucket),
		slog.Int("count", len(req.Keys)))
	writeJSON(w, http.StatusOK, DeleteObjectsResponse{Deleted: len(req.Keys)})
}

func (a *API) RenameObject(w http.ResponseWriter, r *http.Request) {
	if !a.requireObjects(w) {
		return
	}
	req, ok := decodeJSON[RenameObjectRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}
	if req.Bucket == "" || req.OldKey == "" || req.NewKey == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "bucket, oldKey and newKey are required")
		return
	}
	if req.OldKey == req.NewKey {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "oldKey and newKey must differ")
		return
	}

	if err := a.objects.RenameObject(r.Context(), req.Bucket, req.OldKey, req.NewKey); err != nil {
		mapError(w, err)
		return
	}
	a.audit.log(AuditObjectRenamed, r,
		slog.String("bucket", req.Bucket),
		slog.String("from", req.OldKey),
		slog.String("to", req.NewKey))
	writeJSON(w, http.StatusOK, RenameObjectResponse{Success: true})
}

func (a *API) CreateFolder(w http.ResponseWriter, r *http.Request) {
	if !a.requireObjects(w) {
		return
	}
	req, ok := decodeJSON[CreateFolderRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}
	if req.Bucket == "" || strings.Trim(req.Path, "/") == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "bucket and path are required")
		return
	}

	if err := a.objects.CreateFolder(r.Context(), req.Bucket, req.Path); err != nil {
		mapError(w, err)
		return
	}
	key := strings.TrimSuffix(req.Path, "/") + "/"
	a.audit.log(AuditFolderCreated, r,
		slog.String("bucket", req.Bucket),
		slog.String("key", key))
	writeJSON(w, http.StatusOK, CreateFolderResponse{Key: key})
}

// PresignedURL issues a time-limited URL for direct upload or download.
// method defaults to GET; expires is capped at 24 hours.
func (a *API) PresignedURL(w http.ResponseWriter, r *http.Request) {
	if !a.requireObjects(w) {
		return
	}
	q := r.URL.Query()
	bucket, key := q.Get("bucket"), q.Get("key")
	if bucket == "" || key == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "bucket and key are required")
		return
	}

	method := cos.PresignGet
	switch strings.ToUpper(q.Get("method")) {
	case "", "GET":
	case "PUT":
		method = cos.PresignPut
	default:
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "method must be GET or PUT")
		return
	}

	expiry := cos.DefaultPresignExpiry
	if raw := q.Get("expires"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 || secs > 86400 {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "expires must be 1..86400 seconds")
			return
		}
		expiry = time.Duration(secs) * time.Second
	}

	url, err := a.objects.PresignedURL(r.Context(), bucket, key, method, expiry)
	if err != nil {
		mapError(w, err)
		return
	}
	a.audit.log(AuditPresignIssued, r,
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.String("method", string(method)))
	writeJSON(w, http.StatusOK, PresignedURLResponse{
		URL:       url,
		ExpiresIn: int(expiry / time.Second),
	})
}

// CDNDomain reports the resolved CDN domain so the console can build
// public object URLs client-side.
func (a *API) CDNDomain(w http.ResponseWriter, r *http.Request) {
	res := a.resolver.Resolve(r.Context(), settings.CDNDomain)
	writeJSON(w, http.StatusOK, CDNDomainResponse{
		Domain: res.Value,
		Source: string(res.Source),
	})
}
