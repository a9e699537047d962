package api

import (
	"log/slog"
	"net/http"

	"github.com/YoungLee-coder/coshub/settings"
)

// GetSettings returns the effective settings with their provenance. The
// access password is masked when set; the CDN domain is not a secret
// and travels in the clear.
func (a *API) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	password := a.resolver.Resolve(ctx, settings.AccessPassword)
	domain := a.resolver.Resolve(ctx, settings.CDNDomain)

	masked := ""
	if password.Value != "" {
		masked = MaskedPassword
	}

	writeJSON(w, http.StatusOK, SettingsResponse{
		KVAvailable: password.KVAvailable && domain.KVAvailable,
		Settings: SettingsPayload{
			AccessPassword: masked,
			CDNDomain:      domain.Value,
		},
		Sources: SettingsSources{
			AccessPassword: string(password.Source),
			CDNDomain:      string(domain.Source),
		},
	})
}

// UpdateSettings writes the provided fields to the KV store. Fields
// absent from the request are untouched; empty strings delete the
// stored value so the environment fallback applies again.
func (a *API) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[UpdateSettingsRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}
	if req.AccessPassword == nil && req.CDNDomain == nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "no settings provided")
		return
	}

	ctx := r.Context()
	var updated []string
	if req.AccessPassword != nil {
		if err := a.resolver.Write(ctx, settings.AccessPassword, *req.AccessPassword); err != nil {
			mapError(w, err)
			return
		}
		updated = append(updated, settings.AccessPassword.KVKey)
	}
	if req.CDNDomain != nil {
		if err := a.resolver.Write(ctx, settings.CDNDomain, *req.CDNDomain); err != nil {
			mapError(w, err)
			return
		}
		updated = append(updated, settings.CDNDomain.KVKey)
	}

	a.audit.log(AuditSettingsUpdated, r, slog.Any("keys", updated))
	writeJSON(w, http.StatusOK, UpdateSettingsResponse{Success: true})
}
