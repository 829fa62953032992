package fetchclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/utils"
)

// RequestMode mirrors the fetch mode option
type RequestMode string

const (
	ModeUnset      RequestMode = ""
	ModeCORS       RequestMode = "cors"
	ModeSameOrigin RequestMode = "same-origin"
	ModeNoCORS     RequestMode = "no-cors"
)

// CachePolicy mirrors the fetch cache option
type CachePolicy string

const (
	CacheUnset   CachePolicy = ""
	CacheDefault CachePolicy = "default"
	CacheNoStore CachePolicy = "no-store"
	CacheReload  CachePolicy = "reload"
	CacheNoCache CachePolicy = "no-cache"
)

var (
	ErrNilInput      = errors.New("nil fetch input")
	ErrModeViolation = errors.New("same-origin mode forbids cross-origin request")
)

// Request is the request-object call shape: it carries its own method, URL and headers.
type Request struct {
	Method      string
	URL         string
	Header      http.Header
	Body        []byte
	Credentials dto.CredentialsMode
	Mode        RequestMode
	Cache       CachePolicy
}

// Clone deep copies headers and body.
func (r *Request) Clone() *Request {
	cpy := *r
	cpy.Header = r.Header.Clone()
	if r.Body != nil {
		cpy.Body = append([]byte(nil), r.Body...)
	}
	return &cpy
}

// Options are the per-call init values. Set fields override the request-object form.
type Options struct {
	Method      string
	Header      http.Header
	Body        []byte
	Credentials dto.CredentialsMode
	Mode        RequestMode
	Cache       CachePolicy
}

// Clone copies opts; a nil receiver yields an empty Options.
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	cpy := *o
	cpy.Header = o.Header.Clone()
	return &cpy
}

// Input is one of RequestInput, URLStringInput or URLInput.
type Input interface {
	fetchInput()
}

type RequestInput struct {
	Request *Request
}

type URLStringInput string

type URLInput struct {
	URL *url.URL
}

func (RequestInput) fetchInput()   {}
func (URLStringInput) fetchInput() {}
func (URLInput) fetchInput()       {}

// Call is the normalized form of any input shape plus its options.
type Call struct {
	Descriptor dto.RequestDescriptor
	Body       []byte
	Mode       RequestMode
	Cache      CachePolicy
}

// Normalize folds in and opts into a single Call. Options win over the request object;
// option headers are merged on top of request headers. Relative URLs resolve against
// pageOrigin; when resolution fails ResolvedURL keeps the raw value.
func Normalize(pageOrigin *url.URL, in Input, opts *Options) (Call, error) {
	var call Call
	headers := http.Header{}

	switch v := in.(type) {
	case RequestInput:
		if v.Request == nil {
			return Call{}, ErrNilInput
		}
		call.Descriptor.Method = v.Request.Method
		call.Descriptor.RawURL = v.Request.URL
		call.Descriptor.Credentials = v.Request.Credentials
		call.Body = v.Request.Body
		call.Mode = v.Request.Mode
		call.Cache = v.Request.Cache
		for k, vals := range v.Request.Header {
			headers[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
		}
	case URLStringInput:
		call.Descriptor.RawURL = string(v)
	case URLInput:
		if v.URL == nil {
			return Call{}, ErrNilInput
		}
		call.Descriptor.RawURL = v.URL.String()
	default:
		return Call{}, ErrNilInput
	}

	if opts != nil {
		if opts.Method != "" {
			call.Descriptor.Method = opts.Method
		}
		for k, vals := range opts.Header {
			headers[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
		}
		if opts.Body != nil {
			call.Body = opts.Body
		}
		if opts.Credentials != dto.CredentialsUnset {
			call.Descriptor.Credentials = opts.Credentials
		}
		if opts.Mode != ModeUnset {
			call.Mode = opts.Mode
		}
		if opts.Cache != CacheUnset {
			call.Cache = opts.Cache
		}
	}

	call.Descriptor.Method = strings.ToUpper(call.Descriptor.Method)
	if call.Descriptor.Method == "" {
		call.Descriptor.Method = http.MethodGet
	}
	call.Descriptor.Headers = headers
	call.Descriptor.ResolvedURL = call.Descriptor.RawURL
	if u, err := utils.ResolveURL(pageOrigin, call.Descriptor.RawURL); err == nil {
		call.Descriptor.ResolvedURL = u.String()
	}
	return call, nil
}

// FetchRequestConfig lets the service dispatch fetch calls by client ref.
type FetchRequestConfig struct {
	Input   Input
	Options *Options
}

func (c *FetchRequestConfig) Ref() dto.NetClientType {
	return NetClientFetchRef
}

func (c *FetchRequestConfig) NewRequest(ctx context.Context) (any, error) {
	if c.Input == nil {
		return nil, ErrNilInput
	}
	in := c.Input
	if ri, ok := in.(RequestInput); ok && ri.Request != nil {
		in = RequestInput{Request: ri.Request.Clone()}
	}
	var opts *Options
	if c.Options != nil {
		opts = c.Options.Clone()
	}
	return &FetchRequestConfig{Input: in, Options: opts}, nil
}
