// Package ajaxclient is a legacy settings-driven client: global defaults installed with
// AjaxSetup, a BeforeSend hook receiving the request handle, then dispatch.
package ajaxclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/joy-dx/csrfnet/config"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/utils"
	"golang.org/x/net/publicsuffix"
)

const NetClientAjaxRef dto.NetClientType = "net.client.ajax"

var ErrAborted = errors.New("ajax call aborted")

type AjaxClientConfig struct {
	Transport http.RoundTripper
	Jar       http.CookieJar
}

func DefaultAjaxClientConfig() AjaxClientConfig {
	return AjaxClientConfig{}
}

func (c *AjaxClientConfig) WithTransport(rt http.RoundTripper) *AjaxClientConfig {
	c.Transport = rt
	return c
}

type Client struct {
	NetClient dto.NetClient
	id        string
	origin    *url.URL
	userAgent string
	jar       http.CookieJar
	client    *http.Client

	mu           sync.RWMutex
	defaults     Settings
	interceptors []Interceptor
	installed    map[string]struct{}
}

func NewClient(ref string, netCfg *config.NetSvcConfig, cfg *AjaxClientConfig) (*Client, error) {
	origin, err := netCfg.Origin()
	if err != nil {
		return nil, fmt.Errorf("ajax client origin: %w", err)
	}
	jar := cfg.Jar
	if jar == nil {
		j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		jar = j
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	return &Client{
		id:        uuid.NewString(),
		origin:    origin,
		userAgent: netCfg.UserAgent,
		jar:       jar,
		NetClient: dto.NetClient{
			Name:        "Ajax Client",
			Ref:         ref,
			ClientType:  NetClientAjaxRef,
			Description: "Settings driven calls with global defaults and beforeSend hooks",
		},
		client:    &http.Client{Timeout: netCfg.RequestTimeout, Transport: transport},
		installed: make(map[string]struct{}),
	}, nil
}

func (c *Client) Ref() string             { return c.NetClient.Ref }
func (c *Client) Type() dto.NetClientType { return NetClientAjaxRef }
func (c *Client) InstanceID() string      { return c.id }

// AjaxSetup merges s into the defaults applied to every call. A BeforeSend in s replaces
// the default hook; it runs before any per-call hook.
func (c *Client) AjaxSetup(s Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hook := c.defaults.BeforeSend
	if s.BeforeSend != nil {
		hook = s.BeforeSend
	}
	c.defaults = merge(c.defaults, s)
	c.defaults.BeforeSend = hook
}

// Defaults returns a copy of the current defaults
func (c *Client) Defaults() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := merge(c.defaults, Settings{})
	out.BeforeSend = c.defaults.BeforeSend
	return out
}

// UseOnce registers fn only if nothing was registered under key on this instance.
// It reports whether fn was registered.
func (c *Client) UseOnce(key string, fn Interceptor) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.installed[key]; ok {
		return false
	}
	c.installed[key] = struct{}{}
	c.interceptors = append(c.interceptors, fn)
	return true
}

// Interceptors returns how many interceptors are registered
func (c *Client) Interceptors() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.interceptors)
}

// Ajax performs one call. BeforeSend hooks run first and may change the settings;
// interceptors then see the final settings read-only, right before dispatch.
// Same-origin targets carry X-Requested-With and session cookies.
func (c *Client) Ajax(ctx context.Context, s Settings) (dto.Response, error) {
	c.mu.RLock()
	eff := merge(c.defaults, s)
	globalHook := c.defaults.BeforeSend
	interceptors := append([]Interceptor(nil), c.interceptors...)
	c.mu.RUnlock()

	xhr := newXHR()
	for k, v := range eff.Headers {
		xhr.SetRequestHeader(k, v)
	}
	if eff.ContentType != "" && xhr.RequestHeader("Content-Type") == "" {
		xhr.SetRequestHeader("Content-Type", eff.ContentType)
	}

	for _, hook := range []BeforeSendFunc{globalHook, eff.BeforeSend} {
		if hook == nil {
			continue
		}
		if err := hook(xhr, &eff); err != nil {
			return dto.Response{}, fmt.Errorf("%w: %v", ErrAborted, err)
		}
	}

	// hooks may have retargeted the call; everything below uses the final settings
	sameOrigin := utils.IsSameOrigin(c.origin, eff.URL)
	if sameOrigin && xhr.RequestHeader("X-Requested-With") == "" {
		xhr.SetRequestHeader("X-Requested-With", "XMLHttpRequest")
	}

	for _, fn := range interceptors {
		if err := fn(xhr, merge(Settings{}, eff)); err != nil {
			return dto.Response{}, fmt.Errorf("%w: interceptor: %v", ErrAborted, err)
		}
	}

	target, err := utils.ResolveURL(c.origin, eff.URL)
	if err != nil {
		return dto.Response{}, fmt.Errorf("resolve url: %w", err)
	}
	method := eff.Method()

	var body io.Reader = http.NoBody
	if len(eff.Data) > 0 {
		if utils.IsSafeMethod(method) {
			q := target.RawQuery
			if q != "" {
				q += "&"
			}
			target.RawQuery = q + string(eff.Data)
		} else {
			body = bytes.NewReader(eff.Data)
		}
	}

	if eff.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, eff.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return dto.Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header = xhr.RequestHeaders()
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if sameOrigin {
		for _, ck := range c.jar.Cookies(target) {
			req.AddCookie(ck)
		}
	}

	httpResp, err := c.client.Do(req)
	if httpResp != nil {
		defer func() {
			io.Copy(io.Discard, httpResp.Body)
			httpResp.Body.Close()
		}()
	}
	if err != nil {
		return dto.Response{}, fmt.Errorf("perform request: %w", err)
	}
	if sameOrigin {
		if cookies := httpResp.Cookies(); len(cookies) > 0 {
			c.jar.SetCookies(target, cookies)
		}
	}

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return dto.Response{}, fmt.Errorf("read body: %w", err)
	}
	resp := dto.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header.Clone(),
		Body:       bodyBytes,
	}
	if resp.StatusCode >= 400 {
		return resp, fmt.Errorf("%s %s: %s", method, target, strings.ToLower(http.StatusText(resp.StatusCode)))
	}
	return resp, nil
}

// AjaxRequestConfig lets the service dispatch ajax calls by client ref.
type AjaxRequestConfig struct {
	Settings Settings
}

func (c *AjaxRequestConfig) Ref() dto.NetClientType {
	return NetClientAjaxRef
}

func (c *AjaxRequestConfig) NewRequest(ctx context.Context) (any, error) {
	s := merge(Settings{}, c.Settings)
	return &s, nil
}

func (c *Client) ProcessRequest(ctx context.Context, inCfg *dto.RequestConfig) (dto.Response, error) {
	cfg, ok := inCfg.ReqConfig.(*AjaxRequestConfig)
	if !ok {
		return dto.Response{}, errors.New("problem casting to ajaxrequestconfig")
	}
	sAny, err := cfg.NewRequest(ctx)
	if err != nil {
		return dto.Response{}, fmt.Errorf("build request: %w", err)
	}
	return c.Ajax(ctx, *sAny.(*Settings))
}
