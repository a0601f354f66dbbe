package utils

import (
	"net"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may call the JSON API. Local
// and private-network origins are always trusted; anything else must be
// listed explicitly.
type OriginPolicy struct {
	allowed map[string]struct{}
}

// NewOriginPolicy trusts the given origins (scheme://host[:port]) in
// addition to local ones.
func NewOriginPolicy(extra ...string) *OriginPolicy {
	p := &OriginPolicy{allowed: make(map[string]struct{}, len(extra))}
	for _, origin := range extra {
		origin = strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
		if origin != "" {
			p.allowed[origin] = struct{}{}
		}
	}
	return p
}

// Allows reports whether origin should receive CORS headers.
func (p *OriginPolicy) Allows(origin string) bool {
	if p != nil {
		if _, ok := p.allowed[strings.TrimRight(strings.ToLower(origin), "/")]; ok && origin != "" {
			return true
		}
	}
	return IsLocalOrigin(origin)
}

// IsLocalOrigin accepts localhost, private and link-local IPs, .local
// hostnames and single-label LAN names.
func IsLocalOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "localhost" || strings.HasSuffix(hostname, ".local") {
		return true
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
	}

	// LAN names have no dots
	return !strings.Contains(hostname, ".")
}
