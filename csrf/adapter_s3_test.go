package csrf

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joy-dx/csrfnet/client/s3client"
	"github.com/joy-dx/csrfnet/dto"
)

func newS3Client(t *testing.T, endpoint string) *s3client.S3Client {
	t.Helper()
	cfg := s3client.DefaultS3ClientConfig("us-east-1")
	cfg.WithEndpoint(endpoint, true).WithCredentials(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "SECRET", Source: "test"}, nil
	}))
	c, err := s3client.NewS3Client("s3", &cfg)
	if err != nil {
		t.Fatalf("NewS3Client: %v", err)
	}
	return c
}

func s3Call(t *testing.T, c *s3client.S3Client, op string) {
	t.Helper()
	reqCfg := dto.DefaultRequestConfig()
	reqCfg.WithReqConfig(&s3client.S3RequestConfig{Operation: op, Bucket: "b", Key: "k", Body: []byte("x")})
	if _, err := c.ProcessRequest(context.Background(), &reqCfg); err != nil {
		t.Fatalf("ProcessRequest %s: %v", op, err)
	}
}

func Test_AttachS3(t *testing.T) {
	page := newRecordingServer(t)
	storage := newRecordingServer(t)
	l, _, _ := newTestLayer(t, page.URL, testMeta())
	l.Install()

	same := newS3Client(t, page.URL)
	cross := newS3Client(t, storage.URL)
	if !l.AttachS3(same) || l.AttachS3(same) || !l.AttachS3(cross) {
		t.Fatal("each s3 instance attaches exactly once")
	}

	s3Call(t, same, "put")
	got := page.last(t)
	if got.Method != http.MethodPut || got.Path != "/b/k" || got.Header.Get(testHeader) != testToken {
		t.Fatalf("same origin put %+v", got)
	}

	s3Call(t, same, "delete")
	if page.last(t).Header.Get(testHeader) != testToken {
		t.Fatal("same origin delete must carry the header")
	}

	s3Call(t, same, "get")
	if page.last(t).Method != http.MethodGet || page.last(t).Header.Get(testHeader) != "" {
		t.Fatal("get must not carry the header")
	}

	s3Call(t, cross, "put")
	if storage.last(t).Header.Get(testHeader) != "" {
		t.Fatal("cross origin storage must not carry the header")
	}
}
