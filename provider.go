package csrfnet

import (
	"github.com/joy-dx/csrfnet/config"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/relays"
)

// NewNetSvc builds a service for one hosting page. Each page gets its own service.
func NewNetSvc(cfg *config.NetSvcConfig) *NetSvc {
	s := &NetSvc{
		cfg:     cfg,
		clients: make(map[string]dto.NetClientInterface),
	}
	if cfg != nil {
		s.relay = cfg.Relay()
		s.relay.Debug(relays.RlyNetLog{Msg: "Net service started"})
	}
	return s
}
