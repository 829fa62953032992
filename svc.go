// Package csrfnet is the application context for outbound calls: a registry of transport
// clients hydrated with an anti-forgery layer that every registered client goes through.
package csrfnet

import (
	"sort"
	"sync"

	"github.com/joy-dx/csrfnet/client/s3client"
	"github.com/joy-dx/csrfnet/config"
	"github.com/joy-dx/csrfnet/csrf"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/relays"
	relayDTO "github.com/joy-dx/relay/dto"
)

const (
	s3HeadersKey = "net/headers"
	s3LogKey     = "net/log"
)

type NetSvc struct {
	cfg     *config.NetSvcConfig
	relay   relayDTO.RelayInterface
	mu      sync.RWMutex
	clients map[string]dto.NetClientInterface
	layer   *csrf.Layer
}

// RegisterClient stores client under ref. Once hydrated the client is attached to the
// anti-forgery layer first; the returned value is what is stored and should be used.
func (s *NetSvc) RegisterClient(ref string, client dto.NetClientInterface) dto.NetClientInterface {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instrument(client)
	if s.layer != nil {
		client = attachClient(s.layer, client)
	}
	s.clients[ref] = client
	return client
}

// instrument adds the service interceptors to object storage clients: extra headers and
// relay diagnostics, each once per instance.
func (s *NetSvc) instrument(client dto.NetClientInterface) {
	c, ok := client.(*s3client.S3Client)
	if !ok {
		return
	}
	if s.cfg != nil && len(s.cfg.ExtraHeaders) > 0 {
		c.UseOnce(s3HeadersKey, s3client.StaticHeaderMiddleware(s.cfg.ExtraHeaders))
	}
	if s.relay != nil {
		c.UseOnce(s3LogKey, s3client.LoggingMiddleware(func(msg string) {
			s.relay.Debug(relays.RlyNetLog{Msg: msg})
		}))
	}
}

func (s *NetSvc) Client(ref string) (dto.NetClientInterface, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[ref]
	return c, ok
}

// Layer is nil until Hydrate succeeds
func (s *NetSvc) Layer() *csrf.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layer
}

func (s *NetSvc) clientRefs() []string {
	refs := make([]string, 0, len(s.clients))
	for ref := range s.clients {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
