package translate

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient builds the HTTP client the web engines share. When proxies
// is non-empty each outgoing request picks one at random, which is how the
// free endpoints tolerate sustained caption traffic without rate-limiting
// a single address.
func NewHTTPClient(proxies []string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	if len(proxies) == 0 {
		return client, nil
	}

	parsed := make([]*url.URL, 0, len(proxies))
	for _, p := range proxies {
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("translate: invalid proxy URL %q", p)
		}
		parsed = append(parsed, u)
	}

	client.Transport = &http.Transport{
		Proxy: func(*http.Request) (*url.URL, error) {
			return parsed[rand.IntN(len(parsed))], nil
		},
	}
	return client, nil
}
