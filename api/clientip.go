package api

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// clientIP returns the address used to key login rate limiting.
//
// The X-Forwarded-For chain is consulted only when the direct peer is
// inside one of the configured trusted-proxy CIDR ranges; otherwise
// untrusted clients could spoof their source and dodge (or poison) the
// limiter. With no trusted proxies configured, RemoteAddr is always the
// answer. The console sits behind at most one reverse proxy, so the
// first valid forwarded entry is the client.
func (a *API) clientIP(r *http.Request) string {
	peer := canonicalIP(r.RemoteAddr)
	if peer == "" || len(a.trustedProxies) == 0 {
		return peer
	}

	addr, err := netip.ParseAddr(peer)
	if err != nil || !containsAddr(a.trustedProxies, addr) {
		return peer
	}

	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := canonicalIP(part); ip != "" {
			return ip
		}
	}
	return peer
}

func containsAddr(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// canonicalIP normalizes a peer address: host:port, bracketed IPv6,
// and zone suffixes all reduce to the bare address. Invalid input
// yields "".
func canonicalIP(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if i := strings.IndexByte(s, '%'); i >= 0 {
		s = s[:i]
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.String()
	}
	return ""
}
