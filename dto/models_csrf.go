package dto

import "net/http"

// Credential is the anti-forgery token and the header it travels in.
// It is read once and never mutated.
type Credential struct {
	TokenValue string
	HeaderName string
}

// Present reports whether both values are set. An absent credential disables the layer.
func (c Credential) Present() bool {
	return c.TokenValue != "" && c.HeaderName != ""
}

// CredentialsMode mirrors the fetch credentials option. The zero value means the caller did
// not choose one.
type CredentialsMode string

const (
	CredentialsUnset      CredentialsMode = ""
	CredentialsOmit       CredentialsMode = "omit"
	CredentialsSameOrigin CredentialsMode = "same-origin"
	CredentialsInclude    CredentialsMode = "include"
)

// RequestDescriptor is the per-call view every adapter builds from its own call shape.
type RequestDescriptor struct {
	Method      string
	RawURL      string
	ResolvedURL string
	Headers     http.Header
	Credentials CredentialsMode
}

// AdapterKind names the transport family an installation belongs to
type AdapterKind string

const (
	ADAPTER_GLOBAL AdapterKind = "global"
	ADAPTER_HTTP   AdapterKind = "httpclient"
	ADAPTER_FETCH  AdapterKind = "fetch"
	ADAPTER_AJAX   AdapterKind = "ajax"
	ADAPTER_S3     AdapterKind = "s3"
)
