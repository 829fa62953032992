package dto

import (
	"context"
)

type NetInterface interface {
	Hydrate(ctx context.Context, meta MetaSource) error
	State() *NetState
	Client(ref string) (NetClientInterface, bool)
	RegisterClient(ref string, client NetClientInterface) NetClientInterface
	RequestOnce(ctx context.Context, cfg *RequestConfig) (Response, error)
}

// AuthProvider defines methods for non-OAuth authentication schemes.
// Returned dto.TokenInfo may include cookies or access tokens.
type AuthProvider interface {
	Authenticate(ctx context.Context) (TokenInfo, error)
	Refresh(ctx context.Context, old TokenInfo) (TokenInfo, error)
}

// MetaSource exposes named page metadata values, e.g. <meta name="_csrf" content="...">.
type MetaSource interface {
	Meta(name string) (string, bool)
}

// NetClientInterface is implemented by every transport client the service can dispatch to.
type NetClientInterface interface {
	Ref() string
	Type() NetClientType
	ProcessRequest(ctx context.Context, cfg *RequestConfig) (Response, error)
}
