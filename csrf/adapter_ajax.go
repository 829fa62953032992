package csrf

import (
	"github.com/joy-dx/csrfnet/client/ajaxclient"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/utils"
)

// AttachAjax registers an interceptor on c. It runs after every BeforeSend hook, so the
// decision is made on the settings the call is actually sent with.
func (l *Layer) AttachAjax(c *ajaxclient.Client) bool {
	if c == nil {
		return l.unavailable(dto.ADAPTER_AJAX)
	}
	key, ok := l.claim(dto.ADAPTER_AJAX, c.InstanceID())
	if !ok {
		return false
	}
	return c.UseOnce(key, l.ajaxInterceptor())
}

func (l *Layer) ajaxInterceptor() ajaxclient.Interceptor {
	return func(xhr *ajaxclient.XHR, s ajaxclient.Settings) error {
		d := l.decide(dto.ADAPTER_AJAX, func() dto.RequestDescriptor {
			desc := dto.RequestDescriptor{
				Method:      s.Method(),
				RawURL:      s.URL,
				ResolvedURL: s.URL,
				Headers:     xhr.RequestHeaders(),
			}
			if u, err := utils.ResolveURL(l.origin, s.URL); err == nil {
				desc.ResolvedURL = u.String()
			}
			return desc
		})
		if d.Action == ActionInject && d.SetHeader {
			cred := l.credential()
			xhr.SetRequestHeader(cred.HeaderName, cred.TokenValue)
		}
		return nil
	}
}
