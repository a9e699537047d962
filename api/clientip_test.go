package api

import (
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPIgnoresHeadersByDefault(t *testing.T) {
	a := &API{}
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "203.0.113.7:51000"
	r.Header.Set("X-Forwarded-For", "10.0.0.1")

	assert.Equal(t, "203.0.113.7", a.clientIP(r))
}

func TestClientIPTrustedProxy(t *testing.T) {
	a := &API{trustedProxies: []netip.Prefix{netip.MustParsePrefix("127.0.0.0/8")}}

	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "127.0.0.1:40000"
	r.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	assert.Equal(t, "198.51.100.9", a.clientIP(r))

	// Same header from an untrusted peer is ignored.
	r.RemoteAddr = "203.0.113.7:40000"
	assert.Equal(t, "203.0.113.7", a.clientIP(r))

	// A trusted peer with a garbage header falls back to the peer.
	r.RemoteAddr = "127.0.0.1:40000"
	r.Header.Set("X-Forwarded-For", "not-an-ip")
	assert.Equal(t, "127.0.0.1", a.clientIP(r))
}

func TestCanonicalIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"192.0.2.1:8080", "192.0.2.1"},
		{"192.0.2.1", "192.0.2.1"},
		{"[::1]:9090", "::1"},
		{"fe80::1%eth0", "fe80::1"},
		{" 198.51.100.4 ", "198.51.100.4"},
		{"not-an-ip", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, canonicalIP(tc.in), tc.in)
	}
}
