package fetchclient

import "net/http"

type FetchClientConfig struct {
	// Transport optional round tripper, defaults to a clone of http.DefaultTransport
	Transport http.RoundTripper
	// Jar optional cookie store; a public-suffix aware jar is created when nil
	Jar http.CookieJar
}

func DefaultFetchClientConfig() FetchClientConfig {
	return FetchClientConfig{}
}

func (c *FetchClientConfig) WithTransport(rt http.RoundTripper) *FetchClientConfig {
	c.Transport = rt
	return c
}

func (c *FetchClientConfig) WithJar(jar http.CookieJar) *FetchClientConfig {
	c.Jar = jar
	return c
}
