package csrfnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/joy-dx/csrfnet/client/fetchclient"
	"github.com/joy-dx/csrfnet/client/httpclient"
	"github.com/joy-dx/csrfnet/dto"
)

// Get issues a GET through the default client
func (s *NetSvc) Get(ctx context.Context, url string) (dto.Response, error) {
	httpRequestConfig := httpclient.DefaultHTTPRequestConfig()
	httpRequestConfig.WithURL(url)
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpRequestConfig).
		WithTaskName("GET " + url)
	return s.RequestOnce(ctx, &cfg)
}

// Post issues a JSON POST through the api client
func (s *NetSvc) Post(ctx context.Context, url string, payload map[string]interface{}) (dto.Response, error) {
	httpRequestConfig := httpclient.DefaultHTTPRequestConfig()
	httpRequestConfig.WithURL(url).
		WithBody(payload).
		WithMethod(http.MethodPost)
	cfg := dto.DefaultRequestConfig()
	cfg.WithClientRef(dto.NET_API_CLIENT_REF).
		WithReqConfig(&httpRequestConfig).
		WithTaskName("POST " + url)
	return s.RequestOnce(ctx, &cfg)
}

// Fetch issues a call through the fetch client
func (s *NetSvc) Fetch(ctx context.Context, in fetchclient.Input, opts *fetchclient.Options) (dto.Response, error) {
	cfg := dto.DefaultRequestConfig()
	cfg.WithClientRef(dto.NET_FETCH_CLIENT_REF).
		WithReqConfig(&fetchclient.FetchRequestConfig{Input: in, Options: opts}).
		WithTaskName("fetch")
	return s.RequestOnce(ctx, &cfg)
}

func (s *NetSvc) RequestOnce(ctx context.Context, cfg *dto.RequestConfig) (dto.Response, error) {
	if cfg == nil {
		return dto.Response{}, errors.New("nil RequestConfig provided")
	}

	if cfg.ClientRef == "" {
		return dto.Response{}, errors.New("nil ClientRef provided")
	}

	if cfg.ReqConfig == nil {
		return dto.Response{}, dto.ErrNilReqConfig
	}

	if cfg.TaskName == "" {
		cfg.TaskName = "http_request"
	}

	netClient, isOK := s.Client(cfg.ClientRef)
	if !isOK {
		return dto.Response{}, fmt.Errorf("client not found: %s", cfg.ClientRef)
	}

	// Sanity check that the req config matches the client type to avoid later casting confusion
	if netClient.Type() != cfg.ReqConfig.Ref() {
		return dto.Response{}, fmt.Errorf(
			"client type mismatch: client=%s(%s) req=%s",
			cfg.ClientRef,
			netClient.Type(),
			cfg.ReqConfig.Ref(),
		)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	response, err := netClient.ProcessRequest(ctx, cfg)
	if err != nil {
		return response, fmt.Errorf("perform request: %w", err)
	}

	if cfg.ResponseObject != nil && len(response.Body) > 0 {
		if unmarshalErr := json.Unmarshal(response.Body, cfg.ResponseObject); unmarshalErr != nil {
			return response, fmt.Errorf("unmarshal response: %w", unmarshalErr)
		}
	}

	return response, nil
}
