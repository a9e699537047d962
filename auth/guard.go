package auth

import "net/http"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// Guard gates protected operations on the session cookie. It holds no
// mutable state: the same cookie value under the same secret always
// yields the same decision.
type Guard struct {
	codec *TokenCodec
}

// NewGuard creates a Guard verifying with codec.
func NewGuard(codec *TokenCodec) *Guard {
	return &Guard{codec: codec}
}

// IsAuthenticated reports whether the request carries a valid session
// cookie. Absent or invalid cookies yield false; it never panics or
// returns an error.
func (g *Guard) IsAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return g.codec.Verify(cookie.Value)
}
