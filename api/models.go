package api

import "github.com/YoungLee-coder/coshub/cos"

// ErrorResponse is the uniform error envelope for every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool `json:"success"`
}

type AuthCheckResponse struct {
	Authenticated bool `json:"authenticated"`
}

// MaskedPassword is what GET /settings returns in place of a configured
// access password. The real value never travels back to the client.
const MaskedPassword = "******"

type SettingsPayload struct {
	AccessPassword string `json:"accessPassword"`
	CDNDomain      string `json:"cdnDomain"`
}

type SettingsSources struct {
	AccessPassword string `json:"accessPassword"`
	CDNDomain      string `json:"cdnDomain"`
}

type SettingsResponse struct {
	KVAvailable bool            `json:"kvAvailable"`
	Settings    SettingsPayload `json:"settings"`
	Sources     SettingsSources `json:"sources"`
}

// UpdateSettingsRequest carries per-field updates; absent fields are
// left untouched, empty strings clear the stored value.
type UpdateSettingsRequest struct {
	AccessPassword *string `json:"accessPassword"`
	CDNDomain      *string `json:"cdnDomain"`
}

type UpdateSettingsResponse struct {
	Success bool `json:"success"`
}

type BucketsResponse struct {
	Buckets []cos.BucketInfo `json:"buckets"`
}

// ObjectItem is a listed object plus its public URLs, populated when a
// CDN domain is configured.
type ObjectItem struct {
	cos.ObjectInfo
	CDNURL       string `json:"cdnUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type ObjectsResponse struct {
	Bucket  string           `json:"bucket"`
	Prefix  string           `json:"prefix"`
	Folders []cos.FolderInfo `json:"folders"`
	Files   []ObjectItem     `json:"files"`
}

type DeleteObjectsRequest struct {
	Bucket string   `json:"bucket"`
	Keys   []string `json:"keys"`
}

type DeleteObjectsResponse struct {
	Deleted int `json:"deleted"`
}

type RenameObjectRequest struct {
	Bucket string `json:"bucket"`
	OldKey string `json:"oldKey"`
	NewKey string `json:"newKey"`
}

type RenameObjectResponse struct {
	Success bool `json:"success"`
}

type CreateFolderRequest struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

type CreateFolderResponse struct {
	Key string `json:"key"`
}

type PresignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

type CDNDomainResponse struct {
	Domain string `json:"domain"`
	Source string `json:"source"`
}
