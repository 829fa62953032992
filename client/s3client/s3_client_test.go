package s3client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/joy-dx/csrfnet/dto"
)

type fakeS3 struct {
	ops     []string
	inputs  []any
	gotOpts [][]func(*s3.Options)

	getOut  *s3.GetObjectOutput
	listOut *s3.ListObjectsV2Output
	err     error
}

func (f *fakeS3) record(op string, in any, optFns []func(*s3.Options)) {
	f.ops = append(f.ops, op)
	f.inputs = append(f.inputs, in)
	f.gotOpts = append(f.gotOpts, optFns)
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.record("get", params, optFns)
	if f.err != nil {
		return nil, f.err
	}
	if f.getOut == nil {
		return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(nil))}, nil
	}
	return f.getOut, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.record("put", params, optFns)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.record("delete", params, optFns)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.record("list", params, optFns)
	if f.err != nil {
		return nil, f.err
	}
	if f.listOut == nil {
		return &s3.ListObjectsV2Output{}, nil
	}
	return f.listOut, nil
}

func newTestClient(t *testing.T, mw ...Middleware) (*S3Client, *fakeS3) {
	t.Helper()

	f := &fakeS3{}
	c := newS3Client("test", &S3ClientConfig{Middlewares: mw}, f)
	return c, f
}

func mustReq(t *testing.T, cfg *S3RequestConfig) *dto.RequestConfig {
	t.Helper()
	return (&dto.RequestConfig{}).WithReqConfig(cfg)
}

// apiOptions runs the per-call option functions and counts the api options they add
func apiOptions(fns []func(*s3.Options)) int {
	var o s3.Options
	for _, fn := range fns {
		fn(&o)
	}
	return len(o.APIOptions)
}

func TestS3Client_ProcessRequest_Golden(t *testing.T) {
	sdkErr := errors.New("sdk down")

	cases := []struct {
		name        string
		req         *S3RequestConfig
		setup       func(f *fakeS3)
		wantOp      string
		wantErr     string
		wantBody    string
		wantMeta    string
		wantOptions int
	}{
		{
			name: "get returns body and metadata headers",
			req:  &S3RequestConfig{Operation: "get", Bucket: "b", Key: "k", Headers: map[string]string{"X-Test": "v"}},
			setup: func(f *fakeS3) {
				f.getOut = &s3.GetObjectOutput{
					Body:     io.NopCloser(strings.NewReader("payload")),
					Metadata: map[string]string{"owner": "csrfnet"},
				}
			},
			wantOp:      "get",
			wantBody:    "payload",
			wantMeta:    "csrfnet",
			wantOptions: 1,
		},
		{
			name:        "put without headers sends no options",
			req:         &S3RequestConfig{Operation: "put", Bucket: "b", Key: "k", Body: []byte("x")},
			wantOp:      "put",
			wantOptions: 0,
		},
		{
			name:        "delete carries every header",
			req:         &S3RequestConfig{Operation: "delete", Bucket: "b", Key: "k", Headers: map[string]string{"X-A": "1", "X-B": "2"}},
			wantOp:      "delete",
			wantOptions: 2,
		},
		{
			name: "list returns newline separated keys",
			req:  &S3RequestConfig{Operation: "list", Bucket: "b", Prefix: "dir/"},
			setup: func(f *fakeS3) {
				f.listOut = &s3.ListObjectsV2Output{Contents: []s3types.Object{{Key: aws.String("dir/a")}, {Key: aws.String("dir/b")}}}
			},
			wantOp:   "list",
			wantBody: "dir/a\ndir/b\n",
		},
		{
			name:    "sdk error is wrapped",
			req:     &S3RequestConfig{Operation: "put", Bucket: "b", Key: "k"},
			setup:   func(f *fakeS3) { f.err = sdkErr },
			wantOp:  "put",
			wantErr: "s3 put object",
		},
		{
			name:    "unsupported operation never reaches the sdk",
			req:     &S3RequestConfig{Operation: "copy", Bucket: "b"},
			wantErr: "unsupported s3 operation: copy",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, f := newTestClient(t)
			if tc.setup != nil {
				tc.setup(f)
			}

			resp, err := c.ProcessRequest(context.Background(), mustReq(t, tc.req))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err=%v want %q", err, tc.wantErr)
				}
				if errors.Is(err, sdkErr) != (f.err != nil) {
					t.Fatalf("sdk error not wrapped: %v", err)
				}
			} else if err != nil {
				t.Fatalf("ProcessRequest: %v", err)
			}

			if tc.wantOp == "" {
				if len(f.ops) != 0 {
					t.Fatalf("sdk called: %v", f.ops)
				}
				return
			}
			if len(f.ops) != 1 || f.ops[0] != tc.wantOp {
				t.Fatalf("ops=%v want %s", f.ops, tc.wantOp)
			}
			if n := apiOptions(f.gotOpts[0]); n != tc.wantOptions {
				t.Fatalf("api options=%d want %d", n, tc.wantOptions)
			}
			if tc.wantErr != "" {
				return
			}
			if resp.StatusCode != 200 || string(resp.Body) != tc.wantBody {
				t.Fatalf("resp=%d %q", resp.StatusCode, resp.Body)
			}
			if tc.wantMeta != "" && resp.Headers.Get("owner") != tc.wantMeta {
				t.Fatalf("metadata headers %v", resp.Headers)
			}
		})
	}
}

func TestS3Client_ProcessRequest_Order(t *testing.T) {
	var order []string
	mw := func(ctx context.Context, r *S3Request) error {
		order = append(order, "middleware:"+r.URL())
		r.SetHeader("X-Csrf-Token", "from-middleware")
		return nil
	}
	f := &fakeS3{}
	c := newS3Client("test", &S3ClientConfig{
		Region:         "eu-west-1",
		Endpoint:       "https://app.example.com/storage",
		ForcePathStyle: true,
		Middlewares:    []Middleware{mw},
	}, f)
	c.Use(func(ctx context.Context, r *S3Request) error {
		order = append(order, "interceptor:"+r.Header("x-csrf-token"))
		if r.PutInput != nil {
			t.Error("interceptors run before Finalize")
		}
		return nil
	})

	if _, err := c.ProcessRequest(context.Background(), mustReq(t, &S3RequestConfig{Operation: "put", Bucket: "b", Key: "k"})); err != nil {
		t.Fatalf("ProcessRequest: %v", err)
	}
	want := []string{"middleware:https://app.example.com/storage/b/k", "interceptor:from-middleware"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order=%v want %v", order, want)
	}

	stop, sf := newTestClient(t, func(context.Context, *S3Request) error { return errors.New("nope") })
	_, err := stop.ProcessRequest(context.Background(), mustReq(t, &S3RequestConfig{Operation: "delete", Bucket: "b", Key: "k"}))
	if err == nil || !strings.Contains(err.Error(), "middleware aborted: nope") || len(sf.ops) != 0 {
		t.Fatalf("err=%v ops=%v", err, sf.ops)
	}
}

func TestS3Client_ProcessRequest_Reuse(t *testing.T) {
	c, f := newTestClient(t)
	c.Use(func(ctx context.Context, r *S3Request) error {
		r.SetHeader("X-Added", "per-call")
		return nil
	})
	reqCfg := &S3RequestConfig{Operation: "put", Bucket: "b", Key: "k", Headers: map[string]string{"X-Test": "v"}}
	for i := 0; i < 2; i++ {
		if _, err := c.ProcessRequest(context.Background(), mustReq(t, reqCfg)); err != nil {
			t.Fatalf("ProcessRequest: %v", err)
		}
	}
	if !reflect.DeepEqual(reqCfg.Headers, map[string]string{"X-Test": "v"}) {
		t.Fatalf("request config mutated: %v", reqCfg.Headers)
	}
	if apiOptions(f.gotOpts[1]) != 2 {
		t.Fatalf("second call options %d", apiOptions(f.gotOpts[1]))
	}
}

func TestS3Request_Finalize_Golden(t *testing.T) {
	cases := []struct {
		name  string
		req   *S3Request
		check func(t *testing.T, r *S3Request)
	}{
		{
			name: "put takes content type, metadata and cache control",
			req: &S3Request{Operation: "put", Bucket: "b", Key: "k", Body: []byte("x"), ContentType: "text/plain", ExtraOpts: map[string]any{
				"metadata":      map[string]any{"a": "1", "skip": 2},
				"cache_control": "no-cache",
			}},
			check: func(t *testing.T, r *S3Request) {
				in := r.PutInput
				if aws.ToString(in.ContentType) != "text/plain" || aws.ToString(in.CacheControl) != "no-cache" {
					t.Fatalf("put input %+v", in)
				}
				if !reflect.DeepEqual(in.Metadata, map[string]string{"a": "1"}) {
					t.Fatalf("metadata %v", in.Metadata)
				}
			},
		},
		{
			name: "list keeps prefix",
			req:  &S3Request{Operation: "list", Bucket: "b", Prefix: "p/"},
			check: func(t *testing.T, r *S3Request) {
				if aws.ToString(r.ListInput.Prefix) != "p/" {
					t.Fatalf("list input %+v", r.ListInput)
				}
			},
		},
		{
			name: "rebuilding clears earlier inputs",
			req:  &S3Request{Operation: "get", Bucket: "b", Key: "k", PutInput: &s3.PutObjectInput{}},
			check: func(t *testing.T, r *S3Request) {
				if r.PutInput != nil || aws.ToString(r.GetInput.Key) != "k" {
					t.Fatalf("inputs get=%+v put=%+v", r.GetInput, r.PutInput)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.req.Finalize(); err != nil {
				t.Fatalf("Finalize: %v", err)
			}
			tc.check(t, tc.req)
		})
	}
}
