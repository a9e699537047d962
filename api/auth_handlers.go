package api

import (
	"log/slog"
	"net/http"

	"github.com/YoungLee-coder/coshub/auth"
)

// Login verifies the submitted password against the resolved access
// password and sets the session cookie on success. Failed attempts
// count toward the per-IP rate limit; throttled attempts do not.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	// Validation failures stop here: they never reach the flow and
	// never consume rate-limit budget.
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "password is required")
		return
	}

	key := a.clientIP(r) + ":/auth/login"
	result, err := a.login.Attempt(r.Context(), req.Password, key)
	if err != nil {
		mapError(w, err)
		return
	}

	switch result.Outcome {
	case auth.OutcomeRateLimited:
		a.audit.logFailure(AuditLoginRateLimited, r, "rate_limited",
			slog.String("retry_after", result.RetryAfter.String()))
		writeRateLimited(w, result.RetryAfter)
	case auth.OutcomeInvalidCredentials:
		a.audit.logFailure(AuditLoginFailure, r, "invalid_credentials")
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid password")
	case auth.OutcomeAuthenticated:
		a.audit.log(AuditLoginSuccess, r)
		writeSessionCookie(w, r, result.Token)
		writeJSON(w, http.StatusOK, LoginResponse{Success: true})
	}
}

// Logout clears the session cookie. It is idempotent: logging out
// without a session still succeeds.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.audit.log(AuditLogout, r)
	clearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, LoginResponse{Success: true})
}

// AuthCheck reports whether the request carries a valid session. It is
// always 200; the answer lives in the body.
func (a *API) AuthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthCheckResponse{
		Authenticated: a.guard.IsAuthenticated(r),
	})
}
