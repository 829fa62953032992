package ajaxclient

import (
	"net/http"
	"strings"
	"time"
)

// BeforeSendFunc runs before dispatch with the request handle and the effective settings.
// Returning an error aborts the call.
type BeforeSendFunc func(xhr *XHR, s *Settings) error

// Interceptor runs after every BeforeSend hook. It gets a copy of the final settings and
// may only touch the request handle. Returning an error aborts the call.
type Interceptor func(xhr *XHR, s Settings) error

// Settings is the callback-configured call description. Zero fields fall back to the
// client defaults set with AjaxSetup.
type Settings struct {
	URL string `json:"url" yaml:"url"`
	// Type is the HTTP method, GET when empty
	Type        string            `json:"type" yaml:"type"`
	Data        []byte            `json:"data" yaml:"data"`
	ContentType string            `json:"content_type" yaml:"content_type"`
	Headers     map[string]string `json:"headers" yaml:"headers"`
	Timeout     time.Duration     `json:"timeout" yaml:"timeout"`
	BeforeSend  BeforeSendFunc    `json:"-" yaml:"-"`
}

func (s *Settings) WithURL(u string) *Settings {
	s.URL = u
	return s
}

func (s *Settings) WithType(method string) *Settings {
	s.Type = method
	return s
}

func (s *Settings) WithData(data []byte, contentType string) *Settings {
	s.Data = data
	s.ContentType = contentType
	return s
}

func (s *Settings) WithHeaders(headers map[string]string) *Settings {
	s.Headers = headers
	return s
}

func (s *Settings) WithBeforeSend(fn BeforeSendFunc) *Settings {
	s.BeforeSend = fn
	return s
}

// Method returns the upper-cased Type, GET when unset
func (s *Settings) Method() string {
	if s.Type == "" {
		return http.MethodGet
	}
	return strings.ToUpper(s.Type)
}

// merge lays call over defaults. BeforeSend is not merged; hooks are chained by the client.
func merge(defaults, call Settings) Settings {
	out := defaults
	out.BeforeSend = call.BeforeSend
	if call.URL != "" {
		out.URL = call.URL
	}
	if call.Type != "" {
		out.Type = call.Type
	}
	if call.Data != nil {
		out.Data = call.Data
	}
	if call.ContentType != "" {
		out.ContentType = call.ContentType
	}
	if call.Timeout != 0 {
		out.Timeout = call.Timeout
	}
	out.Headers = make(map[string]string, len(defaults.Headers)+len(call.Headers))
	for k, v := range defaults.Headers {
		out.Headers[k] = v
	}
	for k, v := range call.Headers {
		out.Headers[k] = v
	}
	return out
}

// XHR is the per-call request handle passed to BeforeSend hooks.
type XHR struct {
	header http.Header
}

func newXHR() *XHR {
	return &XHR{header: http.Header{}}
}

// SetRequestHeader sets name, replacing any previous value.
func (x *XHR) SetRequestHeader(name, value string) {
	x.header.Set(name, value)
}

// RequestHeader returns the value set for name, ignoring case.
func (x *XHR) RequestHeader(name string) string {
	return x.header.Get(name)
}

// RequestHeaders returns a copy of every header set so far
func (x *XHR) RequestHeaders() http.Header {
	return x.header.Clone()
}
