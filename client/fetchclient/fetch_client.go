// Package fetchclient is a request/response client accepting a request object, a URL string
// or a URL value, with browser-like credentials, mode and cache options.
package fetchclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/google/uuid"
	"github.com/joy-dx/csrfnet/config"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/utils"
	"golang.org/x/net/publicsuffix"
)

const NetClientFetchRef dto.NetClientType = "net.client.fetch"

// Doer is the fetch capability. Decorators wrap a Doer and return another.
type Doer interface {
	Fetch(ctx context.Context, in Input, opts *Options) (dto.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(ctx context.Context, in Input, opts *Options) (dto.Response, error)

func (f DoerFunc) Fetch(ctx context.Context, in Input, opts *Options) (dto.Response, error) {
	return f(ctx, in, opts)
}

type Fetcher struct {
	NetClient dto.NetClient
	id        string
	origin    *url.URL
	userAgent string
	jar       http.CookieJar
	client    *http.Client
}

func NewFetcher(ref string, netCfg *config.NetSvcConfig, cfg *FetchClientConfig) (*Fetcher, error) {
	origin, err := netCfg.Origin()
	if err != nil {
		return nil, fmt.Errorf("fetch client origin: %w", err)
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
	return &Fetcher{
		id:        uuid.NewString(),
		origin:    origin,
		userAgent: netCfg.UserAgent,
		jar:       jar,
		NetClient: dto.NetClient{
			Name:        "Fetch Client",
			Ref:         ref,
			ClientType:  NetClientFetchRef,
			Description: "Request/response calls with credentials, mode and cache options",
		},
		// cookies are handled per call according to the credentials mode
		client: &http.Client{Timeout: netCfg.RequestTimeout, Transport: transport},
	}, nil
}

func (f *Fetcher) Ref() string             { return f.NetClient.Ref }
func (f *Fetcher) Type() dto.NetClientType { return NetClientFetchRef }
func (f *Fetcher) InstanceID() string      { return f.id }

// Jar exposes the cookie store used for credentialed calls
func (f *Fetcher) Jar() http.CookieJar { return f.jar }

func (f *Fetcher) ProcessRequest(ctx context.Context, inCfg *dto.RequestConfig) (dto.Response, error) {
	return processFetch(ctx, f, inCfg)
}

// processFetch dispatches a FetchRequestConfig through any Doer.
func processFetch(ctx context.Context, d Doer, inCfg *dto.RequestConfig) (dto.Response, error) {
	cfg, ok := inCfg.ReqConfig.(*FetchRequestConfig)
	if !ok {
		return dto.Response{}, errors.New("problem casting to fetchrequestconfig")
	}
	reqAny, err := cfg.NewRequest(ctx)
	if err != nil {
		return dto.Response{}, fmt.Errorf("build request: %w", err)
	}
	r := reqAny.(*FetchRequestConfig)
	return d.Fetch(ctx, r.Input, r.Options)
}

// ProcessWith lets decorators satisfy dto.NetClientInterface.
func ProcessWith(ctx context.Context, d Doer, inCfg *dto.RequestConfig) (dto.Response, error) {
	return processFetch(ctx, d, inCfg)
}

// Fetch performs one call. Credentials default to same-origin: cookies from the jar are
// sent and stored only when the mode allows it for the target.
func (f *Fetcher) Fetch(ctx context.Context, in Input, opts *Options) (dto.Response, error) {
	call, err := Normalize(f.origin, in, opts)
	if err != nil {
		return dto.Response{}, err
	}

	target, err := url.Parse(call.Descriptor.ResolvedURL)
	if err != nil {
		return dto.Response{}, fmt.Errorf("parse url: %w", err)
	}
	sameOrigin := utils.OriginOf(target) == utils.OriginOf(f.origin)
	if call.Mode == ModeSameOrigin && !sameOrigin {
		return dto.Response{}, fmt.Errorf("%w: %s", ErrModeViolation, target)
	}

	var body io.Reader = http.NoBody
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Descriptor.Method, target.String(), body)
	if err != nil {
		return dto.Response{}, fmt.Errorf("create request: %w", err)
	}
	for k, vals := range call.Descriptor.Headers {
		req.Header[k] = append([]string(nil), vals...)
	}
	if f.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	applyCachePolicy(req.Header, call.Cache)

	send := sendsCredentials(call.Descriptor.Credentials, sameOrigin)
	if send {
		for _, ck := range f.jar.Cookies(target) {
			req.AddCookie(ck)
		}
	}

	httpResp, err := f.client.Do(req)
	if httpResp != nil {
		defer func() {
			io.Copy(io.Discard, httpResp.Body)
			httpResp.Body.Close()
		}()
	}
	if err != nil {
		return dto.Response{}, fmt.Errorf("perform request: %w", err)
	}

	if send {
		if cookies := httpResp.Cookies(); len(cookies) > 0 {
			f.jar.SetCookies(target, cookies)
		}
	}

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return dto.Response{}, fmt.Errorf("read body: %w", err)
	}
	return dto.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header.Clone(),
		Body:       bodyBytes,
	}, nil
}

func sendsCredentials(mode dto.CredentialsMode, sameOrigin bool) bool {
	switch mode {
	case dto.CredentialsInclude:
		return true
	case dto.CredentialsOmit:
		return false
	default:
		return sameOrigin
	}
}

func applyCachePolicy(h http.Header, policy CachePolicy) {
	if h.Get("Cache-Control") != "" {
		return
	}
	switch policy {
	case CacheNoStore:
		h.Set("Cache-Control", "no-store")
	case CacheReload, CacheNoCache:
		h.Set("Cache-Control", "no-cache")
		h.Set("Pragma", "no-cache")
	}
}
