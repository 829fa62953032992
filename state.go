package csrfnet

import (
	"context"
	"errors"
	"fmt"

	"github.com/joy-dx/csrfnet/client/ajaxclient"
	"github.com/joy-dx/csrfnet/client/fetchclient"
	"github.com/joy-dx/csrfnet/client/httpclient"
	"github.com/joy-dx/csrfnet/client/s3client"
	"github.com/joy-dx/csrfnet/csrf"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/relays"
)

func (s *NetSvc) State() *dto.NetState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &dto.NetState{
		ExtraHeaders:   s.cfg.ExtraHeaders,
		RequestTimeout: s.cfg.RequestTimeout,
		UserAgent:      s.cfg.UserAgent,
		PageOrigin:     s.cfg.PageOrigin,
		LayerState:     string(csrf.StateUninitialized),
	}
	if s.layer != nil {
		state.LayerState = string(s.layer.State())
		state.HeaderName = s.layer.HeaderName()
		state.Installations = s.layer.Installations()
	}
	for _, ref := range s.clientRefs() {
		c := s.clients[ref]
		state.Clients = append(state.Clients, dto.NetClient{Ref: ref, ClientType: c.Type()})
	}
	return state
}

// Hydrate installs the anti-forgery layer from meta, creates the standard clients and
// attaches every registered client. Calling it again attaches nothing twice.
func (s *NetSvc) Hydrate(ctx context.Context, meta dto.MetaSource) error {
	if s.cfg == nil {
		return errors.New("no net config")
	}
	if s.relay == nil {
		return errors.New("no relay implementation")
	}
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layer == nil {
		layer, err := csrf.New(s.cfg, meta)
		if err != nil {
			return fmt.Errorf("create csrf layer: %w", err)
		}
		s.layer = layer
	}
	s.layer.Install()

	if err := s.ensureDefaultClients(); err != nil {
		return err
	}
	for _, ref := range s.clientRefs() {
		s.clients[ref] = attachClient(s.layer, s.clients[ref])
	}

	s.relay.Debug(relays.RlyNetLog{Msg: fmt.Sprintf("Net service hydrated, csrf layer %s", s.layer.State())})
	return nil
}

// ensureDefaultClients creates the standard clients that are not registered yet.
func (s *NetSvc) ensureDefaultClients() error {
	logMW := httpclient.LoggingMiddleware(func(msg string) {
		s.relay.Debug(relays.RlyNetLog{Msg: msg})
	})

	if _, ok := s.clients[dto.NET_DEFAULT_CLIENT_REF]; !ok {
		cfg := httpclient.DefaultHTTPClientConfig()
		cfg.WithBaseURL(s.cfg.PageOrigin).
			WithMiddleware(httpclient.StaticHeaderMiddleware(s.cfg.ExtraHeaders), logMW)
		s.clients[dto.NET_DEFAULT_CLIENT_REF] = httpclient.NewHTTPClient(dto.NET_DEFAULT_CLIENT_REF, s.cfg, &cfg)
	}

	if _, ok := s.clients[dto.NET_API_CLIENT_REF]; !ok {
		headers := map[string]string{"X-Requested-With": "XMLHttpRequest"}
		for k, v := range s.cfg.ExtraHeaders {
			headers[k] = v
		}
		cfg := httpclient.DefaultHTTPClientConfig()
		cfg.WithBaseURL(s.cfg.PageOrigin).
			WithMiddleware(httpclient.StaticHeaderMiddleware(headers), logMW)
		s.clients[dto.NET_API_CLIENT_REF] = httpclient.NewHTTPClient(dto.NET_API_CLIENT_REF, s.cfg, &cfg)
	}

	if _, ok := s.clients[dto.NET_FETCH_CLIENT_REF]; !ok {
		cfg := fetchclient.DefaultFetchClientConfig()
		f, err := fetchclient.NewFetcher(dto.NET_FETCH_CLIENT_REF, s.cfg, &cfg)
		if err != nil {
			return fmt.Errorf("create fetch client: %w", err)
		}
		s.clients[dto.NET_FETCH_CLIENT_REF] = f
	}

	if _, ok := s.clients[dto.NET_AJAX_CLIENT_REF]; !ok {
		cfg := ajaxclient.DefaultAjaxClientConfig()
		a, err := ajaxclient.NewClient(dto.NET_AJAX_CLIENT_REF, s.cfg, &cfg)
		if err != nil {
			return fmt.Errorf("create ajax client: %w", err)
		}
		if len(s.cfg.ExtraHeaders) > 0 {
			a.AjaxSetup(ajaxclient.Settings{Headers: s.cfg.ExtraHeaders})
		}
		s.clients[dto.NET_AJAX_CLIENT_REF] = a
	}
	return nil
}

// attachClient hands client to the adapter for its transport. Fetch capable clients come
// back decorated; other clients are returned as given.
func attachClient(layer *csrf.Layer, client dto.NetClientInterface) dto.NetClientInterface {
	switch c := client.(type) {
	case *httpclient.HTTPClient:
		layer.AttachHTTPClient(c)
	case *ajaxclient.Client:
		layer.AttachAjax(c)
	case *s3client.S3Client:
		layer.AttachS3(c)
	case fetchclient.Doer:
		if wrapped, ok := layer.WrapFetch(c).(dto.NetClientInterface); ok {
			return wrapped
		}
	}
	return client
}
