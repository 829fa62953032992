package csrf

import (
	"context"

	"github.com/google/uuid"
	"github.com/joy-dx/csrfnet/client/fetchclient"
	"github.com/joy-dx/csrfnet/dto"
)

type instanceIdentifier interface {
	InstanceID() string
}

// WrapFetch returns a Doer that decorates next. Wrapping a decorator of this layer, or a
// Doer instance that was wrapped before, returns the existing decorator. When the layer is
// not installed next is returned as is.
func (l *Layer) WrapFetch(next fetchclient.Doer) fetchclient.Doer {
	if next == nil {
		l.unavailable(dto.ADAPTER_FETCH)
		return nil
	}
	if w, ok := next.(*csrfFetch); ok && w.layer == l {
		return w
	}

	id := uuid.NewString()
	if ident, ok := next.(instanceIdentifier); ok {
		id = ident.InstanceID()
	}

	l.fetchMu.Lock()
	defer l.fetchMu.Unlock()
	key, ok := l.claim(dto.ADAPTER_FETCH, id)
	if !ok {
		if w, found := l.wrapped[key]; found {
			return w
		}
		return next
	}
	w := &csrfFetch{layer: l, next: next, id: id}
	l.wrapped[key] = w
	return w
}

// csrfFetch is the decorated fetch capability
type csrfFetch struct {
	layer *Layer
	next  fetchclient.Doer
	id    string
}

func (w *csrfFetch) Unwrap() fetchclient.Doer { return w.next }

func (w *csrfFetch) InstanceID() string { return w.id }

func (w *csrfFetch) Ref() string {
	if c, ok := w.next.(dto.NetClientInterface); ok {
		return c.Ref()
	}
	return dto.NET_FETCH_CLIENT_REF
}

func (w *csrfFetch) Type() dto.NetClientType {
	return fetchclient.NetClientFetchRef
}

func (w *csrfFetch) ProcessRequest(ctx context.Context, cfg *dto.RequestConfig) (dto.Response, error) {
	return fetchclient.ProcessWith(ctx, w, cfg)
}

// Fetch forwards passthrough calls untouched. Injected calls get the merged headers with
// the credential added and credentials defaulted to same-origin.
func (w *csrfFetch) Fetch(ctx context.Context, in fetchclient.Input, opts *fetchclient.Options) (dto.Response, error) {
	var call fetchclient.Call
	var normErr error
	d := w.layer.decide(dto.ADAPTER_FETCH, func() dto.RequestDescriptor {
		call, normErr = fetchclient.Normalize(w.layer.origin, in, opts)
		return call.Descriptor
	})
	if normErr != nil || d.Action != ActionInject {
		return w.next.Fetch(ctx, in, opts)
	}

	headers := call.Descriptor.Headers.Clone()
	if d.SetHeader {
		cred := w.layer.credential()
		headers.Set(cred.HeaderName, cred.TokenValue)
	}
	creds := call.Descriptor.Credentials
	if d.UpgradeCredentials {
		creds = dto.CredentialsSameOrigin
	}

	if ri, ok := in.(fetchclient.RequestInput); ok {
		req := ri.Request.Clone()
		req.Method = call.Descriptor.Method
		req.Header = headers
		req.Body = call.Body
		req.Credentials = creds
		req.Mode = call.Mode
		req.Cache = call.Cache
		return w.next.Fetch(ctx, fetchclient.RequestInput{Request: req}, nil)
	}

	nextOpts := opts.Clone()
	nextOpts.Header = headers
	nextOpts.Credentials = creds
	return w.next.Fetch(ctx, in, nextOpts)
}
