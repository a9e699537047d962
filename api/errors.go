package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/YoungLee-coder/coshub/auth"
	"github.com/YoungLee-coder/coshub/cos"
	"github.com/YoungLee-coder/coshub/settings"
)

// Stable error codes surfaced to clients. Messages stay generic:
// authentication failures never reveal which factor failed.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// writeRateLimited sends a 429 with the retry delay rounded up to whole
// seconds, never less than one.
func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	result := auth.RateLimitResult{RetryAfter: retryAfter}
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds()))
	writeError(w, http.StatusTooManyRequests, CodeRateLimited, "too many failed login attempts; try again later")
}

// mapError converts internal errors to the response taxonomy. Unknown
// errors become a generic INTERNAL_ERROR so nothing internal leaks.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "settings store is not available in this deployment")
	case errors.Is(err, cos.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "object not found")
	default:
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

const (
	maxAuthBodySize  = 4 << 10
	maxSmallBodySize = 64 << 10
)

// decodeJSON reads a size-bounded JSON body. On failure it writes a 400
// and reports false; handlers just return.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, maxSize int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
		return v, false
	}
	return v, true
}
