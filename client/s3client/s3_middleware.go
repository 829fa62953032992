package s3client

import (
	"context"
	"fmt"
)

// StaticHeaderMiddleware sets headers on every operation. Values already on the request
// win, whatever their casing.
func StaticHeaderMiddleware(headers map[string]string) Middleware {
	return func(ctx context.Context, r *S3Request) error {
		for k, v := range headers {
			if r.Header(k) != "" {
				continue
			}
			r.SetHeader(k, v)
		}
		return nil
	}
}

// LoggingMiddleware reports each operation as the method and address it is sent to.
func LoggingMiddleware(logger func(msg string)) Middleware {
	return func(ctx context.Context, r *S3Request) error {
		logger(fmt.Sprintf("[S3] %s %s", r.Method(), r.URL()))
		return nil
	}
}
