package csrf

import (
	"context"

	"github.com/joy-dx/csrfnet/client/s3client"
	"github.com/joy-dx/csrfnet/dto"
)

// AttachS3 registers the interceptor on an object storage client. Only custom endpoints on
// the page origin ever receive the header.
func (l *Layer) AttachS3(c *s3client.S3Client) bool {
	if c == nil {
		return l.unavailable(dto.ADAPTER_S3)
	}
	key, ok := l.claim(dto.ADAPTER_S3, c.InstanceID())
	if !ok {
		return false
	}
	return c.UseOnce(key, func(ctx context.Context, r *s3client.S3Request) error {
		d := l.decide(dto.ADAPTER_S3, func() dto.RequestDescriptor {
			target := r.URL()
			return dto.RequestDescriptor{
				Method:      r.Method(),
				RawURL:      target,
				ResolvedURL: target,
				Headers:     rawHeader(r.Headers),
			}
		})
		if d.Action == ActionInject && d.SetHeader {
			cred := l.credential()
			if r.Headers == nil {
				r.Headers = map[string]string{}
			}
			setMapHeader(r.Headers, cred.HeaderName, cred.TokenValue)
		}
		return nil
	})
}
