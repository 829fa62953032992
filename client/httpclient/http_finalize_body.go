package httpclient

import (
	"fmt"

	"github.com/joy-dx/csrfnet/utils"
)

// FinalizeBody prepares BodyBytes and ContentType exactly once per call.
// Explicit BodyBytes set by a middleware win over Body. Safe methods without a body
// send no payload.
func (r *HTTPRequest) FinalizeBody() error {
	if r.BodyBytes != nil {
		return nil
	}
	if len(r.Body) == 0 && utils.IsSafeMethod(r.Method) {
		return nil
	}

	bodyBuf, ct, err := utils.PrepareBody(r.Body, r.BodyType)
	if err != nil {
		return fmt.Errorf("prepare body: %w", err)
	}

	r.BodyBytes = bodyBuf
	if r.ContentType == "" {
		r.ContentType = ct
	}
	return nil
}
