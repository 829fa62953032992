package httpclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/utils"
)

// HTTPRequestConfig is immutable input (safe to reuse).
type HTTPRequestConfig struct {
	Method string `json:"method" yaml:"method"`
	URL    string `json:"url" yaml:"url"`
	// BaseURL overrides the client base for this call
	BaseURL string                 `json:"base_url" yaml:"base_url"`
	Body    map[string]interface{} `json:"body" yaml:"body"`
	// BodyType application/json, application/x-www-form-urlencoded
	BodyType string            `json:"body_type" yaml:"body_type"`
	Headers  map[string]string `json:"headers" yaml:"headers"`
	// WithCredentials nil leaves the choice to interceptors; false suppresses session cookies
	WithCredentials *bool `json:"with_credentials,omitempty" yaml:"with_credentials,omitempty"`
}

func DefaultHTTPRequestConfig() HTTPRequestConfig {
	return HTTPRequestConfig{
		Method:   http.MethodGet,
		Body:     map[string]interface{}{},
		BodyType: "application/json",
		Headers:  make(map[string]string),
	}
}

func (c *HTTPRequestConfig) Ref() dto.NetClientType {
	return NetClientHTTPRef
}

func (c *HTTPRequestConfig) WithMethod(method string) *HTTPRequestConfig {
	c.Method = method
	return c
}
func (c *HTTPRequestConfig) WithBody(body map[string]interface{}) *HTTPRequestConfig {
	c.Body = body
	return c
}
func (c *HTTPRequestConfig) WithHeaders(headers map[string]string) *HTTPRequestConfig {
	c.Headers = headers
	return c
}
func (c *HTTPRequestConfig) WithURL(url string) *HTTPRequestConfig {
	c.URL = url
	return c
}
func (c *HTTPRequestConfig) WithBaseURL(base string) *HTTPRequestConfig {
	c.BaseURL = base
	return c
}
func (c *HTTPRequestConfig) WithSendCredentials(send bool) *HTTPRequestConfig {
	c.WithCredentials = &send
	return c
}

// NewRequest creates a per-call mutable request object.
// The config is left untouched and its maps are copied, not shared.
func (c *HTTPRequestConfig) NewRequest(ctx context.Context) (any, error) {
	r := &HTTPRequest{
		Method:   c.Method,
		URL:      c.URL,
		BaseURL:  c.BaseURL,
		BodyType: c.BodyType,
		Headers:  make(map[string]string, len(c.Headers)),
		Body:     make(map[string]any, len(c.Body)),
	}
	if c.WithCredentials != nil {
		v := *c.WithCredentials
		r.WithCredentials = &v
	}
	for k, v := range c.Headers {
		r.Headers[k] = v
	}
	for k, v := range c.Body {
		r.Body[k] = v
	}
	return r, nil
}

// HTTPRequest is per-call mutable state.
type HTTPRequest struct {
	Method          string
	URL             string
	BaseURL         string
	Body            map[string]any
	BodyType        string
	Headers         map[string]string
	WithCredentials *bool
	// Finalized wire body (deterministic for tests and retries)
	BodyBytes   []byte
	ContentType string
}

func (r *HTTPRequest) ClientType() dto.NetClientType { return NetClientHTTPRef }

func (r *HTTPRequest) SetHeader(k, v string) {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[k] = v
}

// Header looks k up ignoring case.
func (r *HTTPRequest) Header(k string) string {
	v, _ := utils.LookupHeader(r.Headers, k)
	return v
}

// ResolvedURL joins URL onto BaseURL. Without a base the URL is returned as parsed.
func (r *HTTPRequest) ResolvedURL() (*url.URL, error) {
	var base *url.URL
	if r.BaseURL != "" {
		b, err := url.Parse(r.BaseURL)
		if err != nil {
			return nil, err
		}
		base = b
	}
	return utils.ResolveURL(base, r.URL)
}
