package dto

import (
	"net/http"
	"time"
)

// NetClientType identifies the transport family of a client
type NetClientType string

const NET_DEFAULT_CLIENT_REF = "net.default"

// NET_API_CLIENT_REF is the application API client carrying X-Requested-With by default
const NET_API_CLIENT_REF = "net.api"

const (
	NET_FETCH_CLIENT_REF = "net.fetch"
	NET_AJAX_CLIENT_REF  = "net.ajax"
)

// NetClient describes a registered client instance.
type NetClient struct {
	Name        string        `json:"name" yaml:"name"`
	Ref         string        `json:"ref" yaml:"ref"`
	ClientType  NetClientType `json:"client_type" yaml:"client_type"`
	Description string        `json:"description" yaml:"description"`
}

type NetState struct {
	ExtraHeaders   ExtraHeaders  `json:"net_extra_headers,omitempty" yaml:"net_extra_headers,omitempty"`
	RequestTimeout time.Duration `json:"net_request_timeout,omitempty" yaml:"net_request_timeout,omitempty"`
	UserAgent      string        `json:"net_user_agent,omitempty" yaml:"net_user_agent,omitempty"`
	PageOrigin     string        `json:"net_page_origin,omitempty" yaml:"net_page_origin,omitempty"`
	// LayerState one of uninitialized, inert, installed
	LayerState string `json:"csrf_layer_state" yaml:"csrf_layer_state"`
	// HeaderName configured anti-forgery header. The token value is never reported.
	HeaderName    string                  `json:"csrf_header_name,omitempty" yaml:"csrf_header_name,omitempty"`
	Installations map[string]Installation `json:"csrf_installations,omitempty" yaml:"csrf_installations,omitempty"`
	Clients       []NetClient             `json:"net_clients,omitempty" yaml:"net_clients,omitempty"`
}

// Installation records one successful guard entry
type Installation struct {
	Key         string      `json:"key" yaml:"key"`
	Adapter     AdapterKind `json:"adapter" yaml:"adapter"`
	InstalledAt time.Time   `json:"installed_at" yaml:"installed_at"`
}

type Response struct {
	StatusCode int
	Headers    http.Header
	// As well as casting to ResponseObject if set, return as byes
	Body []byte
}
