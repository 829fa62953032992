package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/joy-dx/csrfnet/dto"
	"golang.org/x/oauth2"
)

// Middleware runs against the per-call request before it is dispatched.
// Returning an error aborts the call.
type Middleware func(ctx context.Context, req *HTTPRequest) error

type HTTPClientConfig struct {
	// BaseURL relative request URLs resolve against it
	BaseURL       string
	AuthProvider  dto.AuthProvider
	OAuthSource   oauth2.TokenSource
	RefreshBuffer time.Duration
	Middlewares   []Middleware
	// Transport optional; a pooled *http.Transport is created when nil
	Transport http.RoundTripper
}

func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		RefreshBuffer: 30 * time.Second,
		Middlewares:   make([]Middleware, 0),
	}
}

func (c *HTTPClientConfig) WithBaseURL(base string) *HTTPClientConfig {
	c.BaseURL = base
	return c
}
func (c *HTTPClientConfig) WithAuthProvider(provider dto.AuthProvider) *HTTPClientConfig {
	c.AuthProvider = provider
	return c
}
func (c *HTTPClientConfig) WithOAuthSource(tokenSource oauth2.TokenSource) *HTTPClientConfig {
	c.OAuthSource = tokenSource
	return c
}

// WithRefreshBuffer sets the early-refresh buffer.
func (c *HTTPClientConfig) WithRefreshBuffer(d time.Duration) *HTTPClientConfig {
	c.RefreshBuffer = d
	return c
}
func (c *HTTPClientConfig) WithMiddleware(m ...Middleware) *HTTPClientConfig {
	c.Middlewares = append(c.Middlewares, m...)
	return c
}
func (c *HTTPClientConfig) WithTransport(rt http.RoundTripper) *HTTPClientConfig {
	c.Transport = rt
	return c
}
