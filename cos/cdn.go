package cos

import (
	"net/url"
	"strconv"
	"strings"
)

// thumbnailFormats are the extensions the image-processing endpoint can
// scale on the fly.
var thumbnailFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"webp": true, "bmp": true, "tiff": true, "tif": true,
}

// DefaultThumbnailSize is the bounding box, in pixels, for generated
// thumbnails.
const DefaultThumbnailSize = 280

// BuildCDNURL returns the CDN-accelerated URL for key, or "" when no CDN
// domain is configured. A bare domain is promoted to https. Path
// separators in the key survive; each segment is escaped individually.
func BuildCDNURL(domain, key string) string {
	if domain == "" || key == "" {
		return ""
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	domain = strings.TrimSuffix(domain, "/")

	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return domain + "/" + strings.Join(segments, "/")
}

// ThumbnailSupported reports whether filename can be rendered through
// the image-processing thumbnail endpoint.
func ThumbnailSupported(filename string) bool {
	return thumbnailFormats[fileExt(filename)]
}

// ThumbnailURL appends the image-processing scale parameters to baseURL.
// The object's ETag rides along as a version parameter so CDN caches
// refresh when the object is replaced.
func ThumbnailURL(baseURL, etag string, size int) string {
	if baseURL == "" {
		return ""
	}
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	side := strconv.Itoa(size)
	u := baseURL + sep + "imageMogr2/thumbnail/" + side + "x" + side
	if v := strings.ReplaceAll(etag, `"`, ""); v != "" {
		u += "&v=" + v
	}
	return u
}

func fileExt(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}
