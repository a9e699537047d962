package auth

import (
	"errors"
	"time"

	"github.com/awnumar/memguard"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed validity window of a session token.
const TokenTTL = 7 * 24 * time.Hour

// ErrNoSecret is returned when no signing secret is configured. This is
// a startup-class failure: without a secret, login is permanently
// unavailable and the codec cannot be constructed.
var ErrNoSecret = errors.New("auth: signing secret is not configured")

// TokenCodec mints and verifies the signed single-claim session token.
// Tokens are stateless: validity is recomputed from the signature and
// expiry alone, the server keeps no session table.
type TokenCodec struct {
	secret *memguard.Enclave
	now    func() time.Time
}

// TokenOption configures the TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock overrides the time source. Tests use it to cross the expiry
// boundary without sleeping.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a codec signing with secret. The secret is
// moved into a memguard enclave and wiped from the input slice.
func NewTokenCodec(secret []byte, opts ...TokenOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	c := &TokenCodec{
		secret: memguard.NewEnclave(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Mint produces a token asserting authenticated=true, valid for TokenTTL
// from now, signed HS256 with the configured secret.
func (c *TokenCodec) Mint() (string, error) {
	key, err := c.secret.Open()
	if err != nil {
		return "", err
	}
	defer key.Destroy()

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"authenticated": true,
		"iat":           now.Unix(),
		"exp":           now.Add(TokenTTL).Unix(),
	})
	return token.SignedString(key.Bytes())
}

// Verify reports whether token carries a valid signature under the
// current secret, has not expired, and asserts authenticated=true.
// Any malformed input returns false; verification never errors.
//
// Expiry is checked as exp < now in whole seconds, so a token remains
// valid through the instant equal to its expiry.
func (c *TokenCodec) Verify(tokenString string) bool {
	if tokenString == "" {
		return false
	}
	key, err := c.secret.Open()
	if err != nil {
		return false
	}
	defer key.Destroy()

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is validated by hand below: the library treats a token
		// as expired at the exact expiry instant, this codec does not.
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return key.Bytes(), nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	if exp.Unix() < c.now().Unix() {
		return false
	}
	authenticated, ok := claims["authenticated"].(bool)
	return ok && authenticated
}
