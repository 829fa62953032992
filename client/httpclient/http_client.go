package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joy-dx/csrfnet/config"
	"github.com/joy-dx/csrfnet/dto"
)

// -----------------------------------------------------------------------------
// PERSISTENT CLIENT IMPLEMENTATION
// -----------------------------------------------------------------------------

// HTTPClient is a middleware-driven client with request interceptors,
// automatic authentication and session management.
//
// It supports multiple authentication modes:
//   - OAuth2 TokenSource (golang.org/x/oauth2)
//   - Custom AuthProvider
//   - Cookie-based sessions
//
// Interceptors registered with Use or UseOnce run after the configured
// middlewares, in registration order, on every call of this instance only.

const NetClientHTTPRef dto.NetClientType = "net.client.http"

type HTTPClient struct {
	NetClient dto.NetClient `json:"net_client" yaml:"net_client"`
	id        string
	cfg       *HTTPClientConfig
	netCfg    *config.NetSvcConfig
	client    *http.Client
	token     dto.TokenInfo
	tokenMu   sync.RWMutex

	interceptorMu sync.RWMutex
	interceptors  []Middleware
	installed     map[string]struct{}
}

func NewHTTPClient(ref string, netCfg *config.NetSvcConfig, cfg *HTTPClientConfig) *HTTPClient {
	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConns:        50,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DisableKeepAlives:   false,
			Proxy:               http.ProxyFromEnvironment,
		}
	}
	return &HTTPClient{
		id:        uuid.NewString(),
		cfg:       cfg,
		netCfg:    netCfg,
		installed: make(map[string]struct{}),
		NetClient: dto.NetClient{
			Name:        "HTTP Client",
			Ref:         ref,
			ClientType:  NetClientHTTPRef,
			Description: "Perform HTTP requests through interceptors including auth support",
		},
		client: &http.Client{
			Timeout:   netCfg.RequestTimeout,
			Transport: transport,
		},
	}
}

func (c *HTTPClient) Ref() string {
	return c.NetClient.Ref
}
func (c *HTTPClient) Type() dto.NetClientType {
	return NetClientHTTPRef
}

// InstanceID is unique per constructed client.
func (c *HTTPClient) InstanceID() string {
	return c.id
}

// BaseURL configured for relative request URLs
func (c *HTTPClient) BaseURL() string {
	return c.cfg.BaseURL
}

// Use registers a request interceptor.
func (c *HTTPClient) Use(mw Middleware) {
	c.interceptorMu.Lock()
	defer c.interceptorMu.Unlock()
	c.interceptors = append(c.interceptors, mw)
}

// UseOnce registers mw only if no interceptor was registered under key on this instance.
// It reports whether mw was registered.
func (c *HTTPClient) UseOnce(key string, mw Middleware) bool {
	c.interceptorMu.Lock()
	defer c.interceptorMu.Unlock()
	if _, ok := c.installed[key]; ok {
		return false
	}
	c.installed[key] = struct{}{}
	c.interceptors = append(c.interceptors, mw)
	return true
}

// Interceptors returns how many interceptors are registered
func (c *HTTPClient) Interceptors() int {
	c.interceptorMu.RLock()
	defer c.interceptorMu.RUnlock()
	return len(c.interceptors)
}

// -----------------------------------------------------------------------------
// REQUEST EXECUTION
// -----------------------------------------------------------------------------

// ProcessRequest executes one authenticated, middleware-wrapped call.
// Automatically handles token lifetimes, OAuth2 renewal, and cookie sessions.
//
// If multiple authentication mechanisms are configured, OAuth2 takes precedence.
// AuthProvider is used as a fallback.
func (c *HTTPClient) ProcessRequest(ctx context.Context, inCfg *dto.RequestConfig) (dto.Response, error) {
	cfg, castOk := inCfg.ReqConfig.(*HTTPRequestConfig)
	if !castOk {
		return dto.Response{}, errors.New("problem casting to httprequestconfig")
	}

	reqAny, err := cfg.NewRequest(ctx)
	if err != nil {
		return dto.Response{}, fmt.Errorf("build request: %w", err)
	}
	reqCfg, ok := reqAny.(*HTTPRequest)
	if !ok {
		return dto.Response{}, errors.New("problem casting built request to httprequest")
	}
	if reqCfg.BaseURL == "" {
		reqCfg.BaseURL = c.cfg.BaseURL
	}

	for _, mw := range c.cfg.Middlewares {
		if err := mw(ctx, reqCfg); err != nil {
			return dto.Response{}, fmt.Errorf("middleware aborted: %w", err)
		}
	}

	c.interceptorMu.RLock()
	interceptors := append([]Middleware(nil), c.interceptors...)
	c.interceptorMu.RUnlock()
	for _, mw := range interceptors {
		if err := mw(ctx, reqCfg); err != nil {
			return dto.Response{}, fmt.Errorf("interceptor aborted: %w", err)
		}
	}

	if err := c.ensureToken(ctx); err != nil {
		return dto.Response{}, fmt.Errorf("ensure token: %w", err)
	}

	c.tokenMu.RLock()
	c.attachAuth(reqCfg)
	c.tokenMu.RUnlock()

	if err := reqCfg.FinalizeBody(); err != nil {
		return dto.Response{}, err
	}

	target, err := reqCfg.ResolvedURL()
	if err != nil {
		return dto.Response{}, fmt.Errorf("resolve url: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		reqCfg.Method,
		target.String(),
		bytes.NewReader(reqCfg.BodyBytes),
	)
	if err != nil {
		return dto.Response{}, fmt.Errorf("create request: %w", err)
	}

	for k, v := range reqCfg.Headers {
		httpReq.Header.Set(k, v)
	}
	if reqCfg.ContentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", reqCfg.ContentType)
	}
	if c.netCfg.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.netCfg.UserAgent)
	}

	// httpResp may be non-nil with error
	httpResp, reqErr := c.client.Do(httpReq)
	if httpResp != nil {
		defer func() {
			io.Copy(io.Discard, httpResp.Body) // drain fully for connection reuse
			httpResp.Body.Close()
		}()
	}
	if reqErr != nil {
		return dto.Response{}, fmt.Errorf("perform request: %w", reqErr)
	}

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return dto.Response{}, fmt.Errorf("read body: %w", err)
	}

	response := dto.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header.Clone(),
		Body:       bodyBytes,
	}

	// Capture cookies, prunes if expired
	if setCookies := response.Headers["Set-Cookie"]; len(setCookies) > 0 {
		c.captureCookiesFromResponse(response)
	}

	if response.StatusCode == http.StatusUnauthorized {
		return response, fmt.Errorf("unauthorized: %s", target)
	}

	return response, nil
}
