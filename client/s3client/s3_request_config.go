package s3client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/csrfnet/utils"
)

// S3RequestConfig defines the structure of an S3 request operation.
type S3RequestConfig struct {
	Operation string // "get", "put", "delete", "list"
	Bucket    string
	Key       string

	// Optional depending on operation
	Body        []byte
	Prefix      string
	ContentType string
	ExtraOpts   map[string]interface{}
	// Headers are sent on the wire request
	Headers map[string]string
}

func (c *S3RequestConfig) Ref() dto.NetClientType {
	return NetClientS3Ref
}

type S3Request struct {
	Operation string
	Bucket    string
	Key       string

	Body        []byte
	Prefix      string
	ContentType string

	ExtraOpts map[string]any
	Headers   map[string]string

	// Target addressing, filled from the client config before middleware
	Endpoint  string
	Region    string
	PathStyle bool

	// Deterministic prepared AWS inputs (built after middleware)
	PutInput    *s3.PutObjectInput
	GetInput    *s3.GetObjectInput
	DeleteInput *s3.DeleteObjectInput
	ListInput   *s3.ListObjectsV2Input
}

func (c *S3RequestConfig) NewRequest(ctx context.Context) (any, error) {
	r := &S3Request{
		Operation:   c.Operation,
		Bucket:      c.Bucket,
		Key:         c.Key,
		Body:        c.Body,
		Prefix:      c.Prefix,
		ContentType: c.ContentType,
		ExtraOpts:   make(map[string]any, len(c.ExtraOpts)),
		Headers:     make(map[string]string, len(c.Headers)),
	}

	for k, v := range c.Headers {
		r.Headers[k] = v
	}
	for k, v := range c.ExtraOpts {
		r.ExtraOpts[k] = v
	}

	return r, nil
}

// Method is the HTTP method the operation is sent with.
func (r *S3Request) Method() string {
	switch r.Operation {
	case "put":
		return http.MethodPut
	case "delete":
		return http.MethodDelete
	default:
		return http.MethodGet
	}
}

// URL is the object address the operation targets. Without a custom endpoint this is the
// AWS virtual-hosted address.
func (r *S3Request) URL() string {
	key := strings.TrimPrefix(r.Key, "/")
	if r.Operation == "list" {
		key = ""
	}
	if r.Endpoint == "" {
		region := r.Region
		if region == "" {
			region = "us-east-1"
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", r.Bucket, region, key)
	}

	u, err := url.Parse(strings.TrimRight(r.Endpoint, "/"))
	if err != nil || u.Host == "" {
		return strings.TrimRight(r.Endpoint, "/") + "/" + r.Bucket + "/" + key
	}
	if r.PathStyle {
		u.Path = u.Path + "/" + r.Bucket + "/" + key
	} else {
		u.Host = r.Bucket + "." + u.Host
		u.Path = u.Path + "/" + key
	}
	return u.String()
}

// Header looks k up ignoring case.
func (r *S3Request) Header(k string) string {
	v, _ := utils.LookupHeader(r.Headers, k)
	return v
}

func (r *S3Request) SetHeader(k, v string) {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[k] = v
}
