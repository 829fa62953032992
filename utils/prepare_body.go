package utils

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// PrepareBody encodes body for the given media type. Parameters such as charset are accepted
// and kept on the returned content type.
func PrepareBody(body map[string]interface{}, bodyType string) ([]byte, string, error) {
	if body == nil {
		return nil, "", nil
	}

	mediaType, params, err := mime.ParseMediaType(bodyType)
	if err != nil {
		return nil, "", fmt.Errorf("parse body_type %q: %w", bodyType, err)
	}
	contentType := mime.FormatMediaType(mediaType, params)

	switch strings.ToLower(mediaType) {
	case "application/json":
		buf, err := json.Marshal(body)
		return buf, contentType, err
	case "application/x-www-form-urlencoded":
		vals := url.Values{}
		for k, v := range body {
			vals.Set(k, fmt.Sprintf("%v", v))
		}
		return []byte(vals.Encode()), contentType, nil
	default:
		return nil, "", fmt.Errorf("unsupported body_type: %s", bodyType)
	}
}
