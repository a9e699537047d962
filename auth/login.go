// Package auth implements the session and login subsystem: a stateless
// signed session token, a fixed-window login rate limiter, and the login
// state machine composing them with the settings resolver.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"time"

	"github.com/YoungLee-coder/coshub/settings"
)

// LoginOutcome is the terminal state of a login attempt.
type LoginOutcome int

const (
	// OutcomeRateLimited denies the attempt before any password
	// comparison takes place.
	OutcomeRateLimited LoginOutcome = iota
	// OutcomeInvalidCredentials covers every comparison failure,
	// including an unset expected password.
	OutcomeInvalidCredentials
	// OutcomeAuthenticated carries a freshly minted session token.
	OutcomeAuthenticated
)

// LoginResult is the outcome of a single login attempt.
type LoginResult struct {
	Outcome    LoginOutcome
	Token      string
	RetryAfter time.Duration
}

// LoginFlow runs the login state transition: admission check, expected
// password resolution, constant-time comparison, then failure recording
// or token minting. The step order is an invariant — checking admission
// after comparing would let throttled attempts keep probing passwords,
// and recording failures on throttled requests would corrupt the counter.
type LoginFlow struct {
	limiter  *RateLimiter
	resolver *settings.Resolver
	codec    *TokenCodec
}

// NewLoginFlow composes the login flow from its injected dependencies.
func NewLoginFlow(limiter *RateLimiter, resolver *settings.Resolver, codec *TokenCodec) *LoginFlow {
	return &LoginFlow{limiter: limiter, resolver: resolver, codec: codec}
}

// Attempt processes a submitted password for the given client identity
// key. The returned error is reserved for internal failures (token
// minting); all expected rejections are expressed as outcomes.
func (f *LoginFlow) Attempt(ctx context.Context, password, key string) (LoginResult, error) {
	if res := f.limiter.Check(key); !res.Allowed {
		return LoginResult{Outcome: OutcomeRateLimited, RetryAfter: res.RetryAfter}, nil
	}

	expected := f.resolver.Resolve(ctx, settings.AccessPassword).Value
	if !passwordsMatch(password, expected) {
		f.limiter.RecordFailure(key)
		return LoginResult{Outcome: OutcomeInvalidCredentials}, nil
	}

	f.limiter.Reset(key)
	token, err := f.codec.Mint()
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Outcome: OutcomeAuthenticated, Token: token}, nil
}

// passwordsMatch compares in constant effort over the digests so the
// comparison leaks neither content nor length. An unset expected
// password never matches: an empty configured password must not grant
// access by coincidence of empty-string equality.
func passwordsMatch(submitted, expected string) bool {
	if expected == "" {
		return false
	}
	a := sha256.Sum256([]byte(submitted))
	b := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
