// Package config holds the service configuration shared by the clients and the
// anti-forgery layer.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/relays"
	relayDTO "github.com/joy-dx/relay/dto"
)

const (
	DefaultTokenMetaName  = "_csrf"
	DefaultHeaderMetaName = "_csrf_header"
)

var ErrNoPageOrigin = errors.New("page origin is empty")

type NetSvcConfig struct {
	// PageOrigin origin of the hosting document, e.g. https://admin.example.com
	PageOrigin string `json:"page_origin" yaml:"pageOrigin"`
	// TokenMetaName and HeaderMetaName name the metadata entries holding the credential
	TokenMetaName  string            `json:"token_meta_name" yaml:"tokenMetaName"`
	HeaderMetaName string            `json:"header_meta_name" yaml:"headerMetaName"`
	RequestTimeout time.Duration     `json:"request_timeout" yaml:"-"`
	UserAgent      string            `json:"user_agent" yaml:"userAgent"`
	ExtraHeaders   dto.ExtraHeaders  `json:"extra_headers" yaml:"extraHeaders"`
	relay          relayDTO.RelayInterface
}

func DefaultNetSvcConfig() NetSvcConfig {
	return NetSvcConfig{
		TokenMetaName:  DefaultTokenMetaName,
		HeaderMetaName: DefaultHeaderMetaName,
		RequestTimeout: 20 * time.Second,
		UserAgent:      "csrfnet/1",
		ExtraHeaders:   dto.ExtraHeaders{},
	}
}

func (c *NetSvcConfig) WithPageOrigin(origin string) *NetSvcConfig {
	c.PageOrigin = origin
	return c
}

func (c *NetSvcConfig) WithMetaNames(token, header string) *NetSvcConfig {
	c.TokenMetaName = token
	c.HeaderMetaName = header
	return c
}

func (c *NetSvcConfig) WithRequestTimeout(d time.Duration) *NetSvcConfig {
	c.RequestTimeout = d
	return c
}

func (c *NetSvcConfig) WithUserAgent(ua string) *NetSvcConfig {
	c.UserAgent = ua
	return c
}

func (c *NetSvcConfig) WithExtraHeaders(headers dto.ExtraHeaders) *NetSvcConfig {
	c.ExtraHeaders = headers
	return c
}

func (c *NetSvcConfig) WithRelay(r relayDTO.RelayInterface) *NetSvcConfig {
	c.relay = r
	return c
}

// Relay returns the configured relay, or one that drops every event.
func (c *NetSvcConfig) Relay() relayDTO.RelayInterface {
	if c.relay == nil {
		return relays.Noop{}
	}
	return c.relay
}

// Origin parses PageOrigin down to scheme and host.
func (c *NetSvcConfig) Origin() (*url.URL, error) {
	raw := strings.TrimSpace(c.PageOrigin)
	if raw == "" {
		return nil, ErrNoPageOrigin
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse page origin: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("page origin %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("page origin %q: missing host", raw)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// Validate checks the fields every consumer depends on.
func (c *NetSvcConfig) Validate() error {
	if _, err := c.Origin(); err != nil {
		return err
	}
	if strings.TrimSpace(c.TokenMetaName) == "" || strings.TrimSpace(c.HeaderMetaName) == "" {
		return errors.New("meta names must not be empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid requestTimeout %s", c.RequestTimeout)
	}
	return nil
}
