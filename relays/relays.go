// Package relays defines the diagnostic events the module publishes through a
// github.com/joy-dx/relay implementation.
package relays

import (
	"log/slog"

	relayDTO "github.com/joy-dx/relay/dto"
)

const (
	RelayNetChannel  relayDTO.EventChannel = "net"
	RelayCSRFChannel relayDTO.EventChannel = "net.csrf"
)

const (
	RlyNetLogRef      relayDTO.EventRef = "net.log"
	RlyCSRFLogRef     relayDTO.EventRef = "net.csrf.log"
	RlyCSRFInstallRef relayDTO.EventRef = "net.csrf.install"
)

// RlyNetLog generic service message
type RlyNetLog struct {
	Msg string `json:"msg" yaml:"msg"`
}

func (e RlyNetLog) RelayChannel() relayDTO.EventChannel { return RelayNetChannel }
func (e RlyNetLog) RelayType() relayDTO.EventRef        { return RlyNetLogRef }
func (e RlyNetLog) Message() string                     { return e.Msg }
func (e RlyNetLog) ToSlog() []slog.Attr {
	return []slog.Attr{slog.String("msg", e.Msg)}
}

// RlyCSRFLog reports a decision or a failure inside an adapter. It never carries the token.
type RlyCSRFLog struct {
	Adapter string `json:"adapter" yaml:"adapter"`
	Method  string `json:"method,omitempty" yaml:"method,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Action  string `json:"action,omitempty" yaml:"action,omitempty"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Msg     string `json:"msg" yaml:"msg"`
}

func (e RlyCSRFLog) RelayChannel() relayDTO.EventChannel { return RelayCSRFChannel }
func (e RlyCSRFLog) RelayType() relayDTO.EventRef        { return RlyCSRFLogRef }
func (e RlyCSRFLog) Message() string                     { return e.Msg }
func (e RlyCSRFLog) ToSlog() []slog.Attr {
	attrs := []slog.Attr{slog.String("msg", e.Msg)}
	if e.Adapter != "" {
		attrs = append(attrs, slog.String("adapter", e.Adapter))
	}
	if e.Method != "" {
		attrs = append(attrs, slog.String("method", e.Method))
	}
	if e.URL != "" {
		attrs = append(attrs, slog.String("url", e.URL))
	}
	if e.Action != "" {
		attrs = append(attrs, slog.String("action", e.Action))
	}
	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", e.Reason))
	}
	return attrs
}

// RlyCSRFInstall is published for every guarded installation attempt
type RlyCSRFInstall struct {
	Key       string `json:"key" yaml:"key"`
	Adapter   string `json:"adapter" yaml:"adapter"`
	Installed bool   `json:"installed" yaml:"installed"`
	Msg       string `json:"msg" yaml:"msg"`
}

func (e RlyCSRFInstall) RelayChannel() relayDTO.EventChannel { return RelayCSRFChannel }
func (e RlyCSRFInstall) RelayType() relayDTO.EventRef        { return RlyCSRFInstallRef }
func (e RlyCSRFInstall) Message() string                     { return e.Msg }
func (e RlyCSRFInstall) ToSlog() []slog.Attr {
	return []slog.Attr{
		slog.String("msg", e.Msg),
		slog.String("key", e.Key),
		slog.String("adapter", e.Adapter),
		slog.Bool("installed", e.Installed),
	}
}
