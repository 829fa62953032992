package utils

import (
	"net"
	"net/url"
	"strings"
)

// OriginOf serializes scheme://host[:port] with default ports elided.
func OriginOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host
}

// ResolveURL resolves raw against base. A nil base returns the parsed raw value.
func ResolveURL(base *url.URL, raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if base == nil {
		return u, nil
	}
	return base.ResolveReference(u), nil
}

// IsSameOrigin reports whether urlLike targets pageOrigin. Relative values resolve against
// the page origin; values that cannot be parsed count as same-origin.
func IsSameOrigin(pageOrigin *url.URL, urlLike string) bool {
	if pageOrigin == nil {
		return true
	}
	u, err := ResolveURL(pageOrigin, urlLike)
	if err != nil {
		return true
	}
	return OriginOf(u) == OriginOf(pageOrigin)
}
