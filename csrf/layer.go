// Package csrf attaches the anti-forgery header to same-origin, state-changing calls made
// through the module's transport clients.
package csrf

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/joy-dx/csrfnet/config"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/relays"
	relayDTO "github.com/joy-dx/relay/dto"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateInert         State = "inert"
	StateInstalled     State = "installed"
)

// Layer owns the credential, the page origin and the installation guard. Install moves it
// from uninitialized to inert or installed; there is no way back.
type Layer struct {
	cfg    *config.NetSvcConfig
	relay  relayDTO.RelayInterface
	meta   dto.MetaSource
	origin *url.URL
	guard  *Guard

	mu    sync.RWMutex
	state State
	cred  dto.Credential

	fetchMu sync.Mutex
	wrapped map[string]*csrfFetch

	decideFn func(dto.Credential, *url.URL, dto.RequestDescriptor) Decision
}

func New(cfg *config.NetSvcConfig, meta dto.MetaSource) (*Layer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("csrf layer: nil config")
	}
	origin, err := cfg.Origin()
	if err != nil {
		return nil, fmt.Errorf("csrf layer origin: %w", err)
	}
	return &Layer{
		cfg:      cfg,
		relay:    cfg.Relay(),
		meta:     meta,
		origin:   origin,
		guard:    NewGuard(),
		state:    StateUninitialized,
		wrapped:  make(map[string]*csrfFetch),
		decideFn: Decide,
	}, nil
}

// Install reads the credential once. Without one the layer goes inert and every Attach is
// a no-op. Repeated calls return the current state.
func (l *Layer) Install() State {
	if !l.guard.InstallOnce(GlobalKey, dto.ADAPTER_GLOBAL) {
		l.relay.Debug(relays.RlyCSRFInstall{Key: GlobalKey, Adapter: string(dto.ADAPTER_GLOBAL), Msg: "layer already installed"})
		return l.State()
	}

	cred := ReadCredential(l.meta, l.cfg.TokenMetaName, l.cfg.HeaderMetaName)

	l.mu.Lock()
	defer l.mu.Unlock()
	if !cred.Present() {
		l.state = StateInert
		l.relay.Debug(relays.RlyCSRFLog{Adapter: string(dto.ADAPTER_GLOBAL), Reason: ReasonNoCredential, Msg: "no anti-forgery credential, layer inert"})
		return l.state
	}
	l.cred = cred
	l.state = StateInstalled
	l.relay.Info(relays.RlyCSRFInstall{Key: GlobalKey, Adapter: string(dto.ADAPTER_GLOBAL), Installed: true, Msg: "anti-forgery layer installed"})
	return l.state
}

func (l *Layer) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// HeaderName is empty unless installed
func (l *Layer) HeaderName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cred.HeaderName
}

func (l *Layer) Origin() *url.URL {
	u := *l.origin
	return &u
}

// Installations returns every guard record
func (l *Layer) Installations() map[string]InstallRecord {
	return l.guard.Records()
}

func (l *Layer) credential() dto.Credential {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cred
}

// claim checks the layer is installed and takes the guard entry for one transport instance.
func (l *Layer) claim(adapter dto.AdapterKind, instanceID string) (string, bool) {
	if l.State() != StateInstalled {
		l.relay.Debug(relays.RlyCSRFLog{Adapter: string(adapter), Msg: "layer not installed, transport left untouched"})
		return "", false
	}
	key := InstanceKey(adapter, instanceID)
	if !l.guard.InstallOnce(key, adapter) {
		l.relay.Debug(relays.RlyCSRFInstall{Key: key, Adapter: string(adapter), Msg: "transport already attached"})
		return key, false
	}
	l.relay.Info(relays.RlyCSRFInstall{Key: key, Adapter: string(adapter), Installed: true, Msg: "transport attached"})
	return key, true
}

func (l *Layer) unavailable(adapter dto.AdapterKind) bool {
	l.relay.Debug(relays.RlyCSRFLog{Adapter: string(adapter), Msg: "transport unavailable, skipped"})
	return false
}

// decide builds the descriptor and applies the rule. Any panic on the way yields passthrough.
func (l *Layer) decide(adapter dto.AdapterKind, build func() dto.RequestDescriptor) (d Decision) {
	var desc dto.RequestDescriptor
	defer func() {
		if r := recover(); r != nil {
			l.relay.Warn(relays.RlyCSRFLog{
				Adapter: string(adapter),
				Method:  desc.Method,
				URL:     desc.ResolvedURL,
				Action:  string(ActionPassthrough),
				Reason:  ReasonFailure,
				Msg:     fmt.Sprintf("csrf decision failed: %v", r),
			})
			d = passthrough(ReasonFailure)
		}
	}()
	desc = build()
	d = l.decideFn(l.credential(), l.origin, desc)
	l.relay.Debug(relays.RlyCSRFLog{
		Adapter: string(adapter),
		Method:  desc.Method,
		URL:     desc.ResolvedURL,
		Action:  string(d.Action),
		Reason:  d.Reason,
		Msg:     "csrf decision",
	})
	return d
}
