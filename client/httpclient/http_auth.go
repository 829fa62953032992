package httpclient

import (
	"fmt"
	"strings"
)

// normalizeAuthType ensures proper "Bearer", "Basic", or custom capitalization.
func normalizeAuthType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "bearer":
		return "Bearer"
	case "basic":
		return "Basic"
	default:
		if t == "" {
			return "Bearer"
		}
		return t
	}
}

// -----------------------------------------------------------------------------
// HEADER + COOKIE MANAGEMENT
// -----------------------------------------------------------------------------

// attachAuth adds the Authorization header unless the caller set one, and the session
// cookies unless the call opted out of credentials.
func (c *HTTPClient) attachAuth(req *HTTPRequest) {
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}

	if c.token.AccessToken != "" {
		if req.Header("Authorization") == "" {
			req.Headers["Authorization"] = fmt.Sprintf("%s %s", normalizeAuthType(c.token.TokenType), c.token.AccessToken)
		}
		return
	}

	if req.WithCredentials != nil && !*req.WithCredentials {
		return
	}
	if len(c.token.Cookies) > 0 {
		parts := make([]string, 0, len(c.token.Cookies))
		for _, ck := range c.token.Cookies {
			parts = append(parts, ck.Name+"="+ck.Value)
		}
		req.Headers["Cookie"] = strings.Join(parts, "; ")
	}
}
