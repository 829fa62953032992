package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joy-dx/csrfnet/relays"
)

func TestNewConfigFromYaml_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		yaml        string
		wantOrigin  string
		wantToken   string
		wantHeader  string
		wantTimeout time.Duration
		wantExtra   map[string]string
		errContains string
	}{
		{
			name:        "defaults applied",
			yaml:        "pageOrigin: https://admin.example.com\n",
			wantOrigin:  "https://admin.example.com",
			wantToken:   DefaultTokenMetaName,
			wantHeader:  DefaultHeaderMetaName,
			wantTimeout: 20 * time.Second,
		},
		{
			name: "overrides",
			yaml: `pageOrigin: http://localhost:8080/admin
tokenMetaName: csrf-token
headerMetaName: csrf-header
requestTimeout: 5s
extraHeaders:
  X-Requested-With: XMLHttpRequest
`,
			wantOrigin:  "http://localhost:8080",
			wantToken:   "csrf-token",
			wantHeader:  "csrf-header",
			wantTimeout: 5 * time.Second,
			wantExtra:   map[string]string{"X-Requested-With": "XMLHttpRequest"},
		},
		{
			name:        "missing origin",
			yaml:        "tokenMetaName: x\n",
			errContains: "page origin is empty",
		},
		{
			name:        "bad scheme",
			yaml:        "pageOrigin: ftp://files.example.com\n",
			errContains: "scheme must be http or https",
		},
		{
			name:        "bad timeout",
			yaml:        "pageOrigin: https://a.example.com\nrequestTimeout: soon\n",
			errContains: "invalid requestTimeout",
		},
		{
			name:        "not yaml",
			yaml:        "pageOrigin: [",
			errContains: "decode config",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := NewConfigFromYaml([]byte(tt.yaml))
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("err=%v; want contains %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConfigFromYaml: %v", err)
			}

			origin, err := cfg.Origin()
			if err != nil {
				t.Fatalf("Origin: %v", err)
			}
			if origin.String() != tt.wantOrigin {
				t.Fatalf("origin=%q want %q", origin.String(), tt.wantOrigin)
			}
			if cfg.TokenMetaName != tt.wantToken || cfg.HeaderMetaName != tt.wantHeader {
				t.Fatalf("meta names=%q/%q want %q/%q", cfg.TokenMetaName, cfg.HeaderMetaName, tt.wantToken, tt.wantHeader)
			}
			if cfg.RequestTimeout != tt.wantTimeout {
				t.Fatalf("timeout=%s want %s", cfg.RequestTimeout, tt.wantTimeout)
			}
			for k, v := range tt.wantExtra {
				if cfg.ExtraHeaders[k] != v {
					t.Fatalf("extra header %s=%q want %q", k, cfg.ExtraHeaders[k], v)
				}
			}
		})
	}
}

func TestNetSvcConfig_RelayFallback(t *testing.T) {
	t.Parallel()

	cfg := DefaultNetSvcConfig()
	if _, ok := cfg.Relay().(relays.Noop); !ok {
		t.Fatalf("Relay() without relay = %T; want relays.Noop", cfg.Relay())
	}

	rec := &relays.Recorder{}
	cfg.WithRelay(rec)
	if cfg.Relay() != rec {
		t.Fatalf("Relay() did not return configured relay")
	}
}

func TestNetSvcConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultNetSvcConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrNoPageOrigin) {
		t.Fatalf("Validate empty origin err=%v want ErrNoPageOrigin", err)
	}

	cfg.WithPageOrigin("https://admin.example.com").WithMetaNames("", "h")
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate empty meta name err=nil")
	}

	cfg.WithMetaNames("t", "h")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
