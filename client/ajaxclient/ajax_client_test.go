package ajaxclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/joy-dx/csrfnet/config"
	"github.com/joy-dx/csrfnet/dto"
)

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     string
}

func newRecordingServer(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var got []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = append(got, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     string(b),
		})
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: "s1", Path: "/"})
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestClient(t *testing.T, origin string) *Client {
	t.Helper()
	netCfg := config.DefaultNetSvcConfig()
	netCfg.WithPageOrigin(origin).WithRequestTimeout(2 * time.Second)
	cfg := DefaultAjaxClientConfig()
	c, err := NewClient("test", &netCfg, &cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func Test_Client_Ajax_golden(t *testing.T) {
	srv, got := newRecordingServer(t, http.StatusOK)
	other, otherGot := newRecordingServer(t, http.StatusOK)

	golden := []struct {
		name       string
		settings   Settings
		wantMethod string
		wantQuery  string
		wantBody   string
		wantXRW    string
		cross      bool
	}{
		{
			name:       "defaults to GET with X-Requested-With",
			settings:   Settings{URL: "/items"},
			wantMethod: http.MethodGet,
			wantXRW:    "XMLHttpRequest",
		},
		{
			name:       "GET data goes to the query string",
			settings:   Settings{URL: "/items?a=1", Data: []byte("b=2")},
			wantMethod: http.MethodGet,
			wantQuery:  "a=1&b=2",
			wantXRW:    "XMLHttpRequest",
		},
		{
			name:       "lower-case type with body",
			settings:   Settings{URL: "/items", Type: "post", Data: []byte("name=x"), ContentType: "application/x-www-form-urlencoded"},
			wantMethod: http.MethodPost,
			wantBody:   "name=x",
			wantXRW:    "XMLHttpRequest",
		},
		{
			name:       "cross origin has no X-Requested-With",
			settings:   Settings{URL: other.URL + "/x", Type: http.MethodPut},
			wantMethod: http.MethodPut,
			cross:      true,
		},
	}

	c := newTestClient(t, srv.URL)
	for _, g := range golden {
		t.Run(g.name, func(t *testing.T) {
			if _, err := c.Ajax(context.Background(), g.settings); err != nil {
				t.Fatalf("Ajax: %v", err)
			}
			list := got
			if g.cross {
				list = otherGot
			}
			last := (*list)[len(*list)-1]
			if last.Method != g.wantMethod || last.RawQuery != g.wantQuery || last.Body != g.wantBody {
				t.Fatalf("recorded %+v", last)
			}
			if last.Header.Get("X-Requested-With") != g.wantXRW {
				t.Fatalf("X-Requested-With=%q", last.Header.Get("X-Requested-With"))
			}
		})
	}
}

func Test_Client_AjaxSetup_mergesDefaults(t *testing.T) {
	srv, got := newRecordingServer(t, http.StatusOK)
	c := newTestClient(t, srv.URL)

	c.AjaxSetup(Settings{Headers: map[string]string{"X-App": "v1", "X-Keep": "k"}, Type: http.MethodPost})
	c.AjaxSetup(Settings{Headers: map[string]string{"X-App": "v2"}})

	want := map[string]string{"X-App": "v2", "X-Keep": "k"}
	if d := c.Defaults(); !reflect.DeepEqual(d.Headers, want) || d.Type != http.MethodPost {
		t.Fatalf("defaults %+v", d)
	}

	if _, err := c.Ajax(context.Background(), Settings{URL: "/a", Headers: map[string]string{"X-Keep": "call"}}); err != nil {
		t.Fatalf("Ajax: %v", err)
	}
	last := (*got)[0]
	if last.Method != http.MethodPost || last.Header.Get("X-App") != "v2" || last.Header.Get("X-Keep") != "call" {
		t.Fatalf("recorded %+v", last)
	}
}

func Test_Client_BeforeSend_orderAndAbort(t *testing.T) {
	srv, got := newRecordingServer(t, http.StatusOK)
	c := newTestClient(t, srv.URL)

	var order []string
	c.AjaxSetup(Settings{BeforeSend: func(xhr *XHR, s *Settings) error {
		order = append(order, "global")
		xhr.SetRequestHeader("X-Global", s.Method())
		return nil
	}})

	_, err := c.Ajax(context.Background(), Settings{URL: "/a", Type: "delete", BeforeSend: func(xhr *XHR, s *Settings) error {
		order = append(order, "call")
		if xhr.RequestHeader("x-global") != http.MethodDelete {
			t.Errorf("call hook should see global header, got %q", xhr.RequestHeader("X-Global"))
		}
		return nil
	}})
	if err != nil {
		t.Fatalf("Ajax: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"global", "call"}) {
		t.Fatalf("order %v", order)
	}
	if (*got)[0].Header.Get("X-Global") != http.MethodDelete {
		t.Fatalf("header not sent: %#v", (*got)[0].Header)
	}

	_, err = c.Ajax(context.Background(), Settings{URL: "/b", BeforeSend: func(*XHR, *Settings) error {
		return errors.New("no")
	}})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("want ErrAborted, got %v", err)
	}
	if len(*got) != 1 {
		t.Fatal("aborted call must not be sent")
	}
}

func Test_Client_Interceptors_runOnFinalSettings(t *testing.T) {
	srv, got := newRecordingServer(t, http.StatusOK)
	other, otherGot := newRecordingServer(t, http.StatusOK)
	c := newTestClient(t, srv.URL)

	var order []string
	var seen Settings
	if !c.UseOnce("k", func(xhr *XHR, s Settings) error {
		order = append(order, "interceptor")
		seen = s
		s.URL = "/discarded"
		xhr.SetRequestHeader("X-Seen", s.Method())
		return nil
	}) {
		t.Fatal("first UseOnce must register")
	}
	if c.UseOnce("k", func(*XHR, Settings) error { return nil }) || c.Interceptors() != 1 {
		t.Fatalf("UseOnce must register once per key, have %d", c.Interceptors())
	}

	_, err := c.Ajax(context.Background(), Settings{URL: "/a", Type: http.MethodPost, BeforeSend: func(xhr *XHR, s *Settings) error {
		order = append(order, "call")
		s.URL = other.URL + "/b"
		s.Type = http.MethodPut
		return nil
	}})
	if err != nil {
		t.Fatalf("Ajax: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"call", "interceptor"}) {
		t.Fatalf("order %v", order)
	}
	if seen.URL != other.URL+"/b" || seen.Method() != http.MethodPut {
		t.Fatalf("interceptor saw %s %s", seen.Method(), seen.URL)
	}
	if len(*got) != 0 || len(*otherGot) != 1 {
		t.Fatalf("dispatched page=%d other=%d", len(*got), len(*otherGot))
	}
	last := (*otherGot)[0]
	if last.Path != "/b" || last.Method != http.MethodPut || last.Header.Get("X-Seen") != http.MethodPut {
		t.Fatalf("recorded %+v", last)
	}
	if last.Header.Get("X-Requested-With") != "" {
		t.Fatal("retargeted cross-origin call must not carry X-Requested-With")
	}

	failing := newTestClient(t, srv.URL)
	failing.UseOnce("deny", func(*XHR, Settings) error { return errors.New("deny") })
	if _, err := failing.Ajax(context.Background(), Settings{URL: "/c", Type: http.MethodPost}); !errors.Is(err, ErrAborted) {
		t.Fatalf("want ErrAborted, got %v", err)
	}
	if len(*got) != 0 {
		t.Fatal("aborted call must not be sent")
	}
}

func Test_Client_Ajax_sessionCookiesAndErrors(t *testing.T) {
	srv, got := newRecordingServer(t, http.StatusOK)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	if _, err := c.Ajax(ctx, Settings{URL: "/login", Type: http.MethodPost}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := c.Ajax(ctx, Settings{URL: "/me"}); err != nil {
		t.Fatalf("me: %v", err)
	}
	if ck := (*got)[1].Header.Get("Cookie"); ck != "SESSION=s1" {
		t.Fatalf("cookie %q", ck)
	}

	failing, _ := newRecordingServer(t, http.StatusForbidden)
	fc := newTestClient(t, failing.URL)
	resp, err := fc.Ajax(ctx, Settings{URL: "/x", Type: http.MethodPost})
	if err == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403 error, got resp=%+v err=%v", resp, err)
	}
}

func Test_Client_ProcessRequest(t *testing.T) {
	srv, got := newRecordingServer(t, http.StatusOK)
	c := newTestClient(t, srv.URL)

	reqCfg := dto.DefaultRequestConfig()
	reqCfg.WithReqConfig(&AjaxRequestConfig{Settings: Settings{URL: "/dispatch", Type: http.MethodPatch}})
	if _, err := c.ProcessRequest(context.Background(), &reqCfg); err != nil {
		t.Fatalf("ProcessRequest: %v", err)
	}
	if (*got)[0].Method != http.MethodPatch || (*got)[0].Path != "/dispatch" {
		t.Fatalf("recorded %+v", (*got)[0])
	}

	bad := dto.DefaultRequestConfig()
	if _, err := c.ProcessRequest(context.Background(), &bad); err == nil {
		t.Fatal("want cast error")
	}
}
