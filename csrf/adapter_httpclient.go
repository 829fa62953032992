package csrf

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/joy-dx/csrfnet/client/httpclient"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/utils"
)

// AttachHTTPClient registers the request interceptor on c. It reports false when c is nil,
// the layer is not installed, or c was attached before.
func (l *Layer) AttachHTTPClient(c *httpclient.HTTPClient) bool {
	if c == nil {
		return l.unavailable(dto.ADAPTER_HTTP)
	}
	key, ok := l.claim(dto.ADAPTER_HTTP, c.InstanceID())
	if !ok {
		return false
	}
	return c.UseOnce(key, l.httpInterceptor())
}

func (l *Layer) httpInterceptor() httpclient.Middleware {
	return func(ctx context.Context, r *httpclient.HTTPRequest) error {
		d := l.decide(dto.ADAPTER_HTTP, func() dto.RequestDescriptor {
			return httpDescriptor(l.origin, r)
		})
		if d.Action != ActionInject {
			return nil
		}
		if d.SetHeader {
			cred := l.credential()
			if r.Headers == nil {
				r.Headers = map[string]string{}
			}
			setMapHeader(r.Headers, cred.HeaderName, cred.TokenValue)
		}
		if d.UpgradeCredentials {
			send := true
			r.WithCredentials = &send
		}
		return nil
	}
}

// httpDescriptor resolves URL against the request base, else the page origin. A base that
// is itself relative resolves against the page origin first.
func httpDescriptor(origin *url.URL, r *httpclient.HTTPRequest) dto.RequestDescriptor {
	desc := dto.RequestDescriptor{
		Method:      strings.ToUpper(r.Method),
		RawURL:      r.URL,
		ResolvedURL: r.URL,
		Headers:     rawHeader(r.Headers),
	}
	switch {
	case r.WithCredentials == nil:
		desc.Credentials = dto.CredentialsUnset
	case *r.WithCredentials:
		desc.Credentials = dto.CredentialsInclude
	default:
		desc.Credentials = dto.CredentialsOmit
	}

	base := origin
	if r.BaseURL != "" {
		b, err := utils.ResolveURL(origin, r.BaseURL)
		if err != nil {
			return desc
		}
		base = b
	}
	if u, err := utils.ResolveURL(base, r.URL); err == nil {
		desc.ResolvedURL = u.String()
	}
	return desc
}

// rawHeader keeps the caller's key casing so duplicates differing only in case all count.
func rawHeader(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h[k] = append(h[k], v)
	}
	return h
}

// setMapHeader replaces every casing of name with a single entry.
func setMapHeader(m map[string]string, name, value string) {
	for k := range m {
		if strings.EqualFold(k, name) {
			delete(m, k)
		}
	}
	m[name] = value
}
