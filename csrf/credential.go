package csrf

import (
	"fmt"
	"io"
	"strings"

	"github.com/joy-dx/csrfnet/dto"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StaticMeta is a MetaSource backed by a map
type StaticMeta map[string]string

func (m StaticMeta) Meta(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// HTMLMeta holds the <meta name=... content=...> pairs of a document.
type HTMLMeta struct {
	values map[string]string
}

// ParseHTMLMeta tokenizes r and collects named meta tags. The first occurrence of a name wins.
func ParseHTMLMeta(r io.Reader) (*HTMLMeta, error) {
	m := &HTMLMeta{values: map[string]string{}}
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("parse html meta: %w", err)
			}
			return m, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Meta {
				continue
			}
			var name, content string
			var hasContent bool
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					name = a.Val
				case "content":
					content, hasContent = a.Val, true
				}
			}
			if name == "" || !hasContent {
				continue
			}
			if _, seen := m.values[name]; !seen {
				m.values[name] = strings.TrimSpace(content)
			}
		}
	}
}

func (m *HTMLMeta) Meta(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[name]
	return v, ok
}

// ReadCredential resolves the token and header name from src. Missing entries leave the
// credential absent.
func ReadCredential(src dto.MetaSource, tokenName, headerName string) dto.Credential {
	if src == nil {
		return dto.Credential{}
	}
	token, _ := src.Meta(tokenName)
	header, _ := src.Meta(headerName)
	return dto.Credential{
		TokenValue: strings.TrimSpace(token),
		HeaderName: strings.TrimSpace(header),
	}
}
