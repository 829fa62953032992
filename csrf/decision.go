package csrf

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/utils"
)

type Action string

const (
	ActionInject      Action = "inject"
	ActionPassthrough Action = "passthrough"
)

const (
	ReasonNoCredential  = "no credential"
	ReasonSafeMethod    = "safe method"
	ReasonCrossOrigin   = "cross origin"
	ReasonStateChanging = "same origin state changing"
	ReasonFailure       = "decision failure"
)

// Decision is the outcome for one call. SetHeader and UpgradeCredentials are only
// meaningful for ActionInject.
type Decision struct {
	Action             Action
	Reason             string
	SetHeader          bool
	UpgradeCredentials bool
}

func passthrough(reason string) Decision {
	return Decision{Action: ActionPassthrough, Reason: reason}
}

// Decide applies the injection rule to desc. It has no side effects.
func Decide(cred dto.Credential, pageOrigin *url.URL, desc dto.RequestDescriptor) Decision {
	if !cred.Present() {
		return passthrough(ReasonNoCredential)
	}
	if utils.IsSafeMethod(desc.Method) {
		return passthrough(ReasonSafeMethod)
	}
	target := desc.ResolvedURL
	if target == "" {
		target = desc.RawURL
	}
	if !utils.IsSameOrigin(pageOrigin, target) {
		return passthrough(ReasonCrossOrigin)
	}
	return Decision{
		Action:             ActionInject,
		Reason:             ReasonStateChanging,
		SetHeader:          !hasHeader(desc.Headers, cred.HeaderName),
		UpgradeCredentials: desc.Credentials == dto.CredentialsUnset,
	}
}

// hasHeader reports a non-empty value for name under any key casing.
func hasHeader(h http.Header, name string) bool {
	for k, vals := range h {
		if !strings.EqualFold(k, name) {
			continue
		}
		for _, v := range vals {
			if v != "" {
				return true
			}
		}
	}
	return false
}
