package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleWebEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleWeb uses the unofficial endpoint behind the Google Translate web
// widget. It needs no key, but the response format is undocumented and the
// endpoint throttles aggressive callers, so it sits behind the same proxy
// rotation as the other free engines.
type GoogleWeb struct {
	endpoint   string
	httpClient *http.Client
}

// GoogleWebOption is a functional option for configuring a GoogleWeb
// engine.
type GoogleWebOption func(*GoogleWeb)

// WithGoogleWebHTTPClient replaces the default HTTP client.
func WithGoogleWebHTTPClient(c *http.Client) GoogleWebOption {
	return func(g *GoogleWeb) { g.httpClient = c }
}

// WithGoogleWebEndpoint overrides the API endpoint, for tests.
func WithGoogleWebEndpoint(endpoint string) GoogleWebOption {
	return func(g *GoogleWeb) { g.endpoint = endpoint }
}

// NewGoogleWeb creates a GoogleWeb engine.
func NewGoogleWeb(opts ...GoogleWebOption) *GoogleWeb {
	g := &GoogleWeb{
		endpoint:   googleWebEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *GoogleWeb) Name() string { return "google" }

func (g *GoogleWeb) Supports(lang string) bool {
	_, ok := iso639[lang]
	return ok
}

func (g *GoogleWeb) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	if source == "" {
		source = "auto"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", joinBatch(texts))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google: create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("google: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: HTTP %d", resp.StatusCode)
	}

	translated, err := parseGoogleResponse(data)
	if err != nil {
		return nil, err
	}
	return splitBatch(translated, len(texts)), nil
}

// parseGoogleResponse digs the translated text out of the widget
// endpoint's nested-array response: the first element is a list of
// [translated, original, ...] chunks that concatenate to the full text.
func parseGoogleResponse(data []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil || len(outer) == 0 {
		return "", fmt.Errorf("google: unexpected response shape")
	}
	var chunks [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &chunks); err != nil {
		return "", fmt.Errorf("google: unexpected response shape")
	}
	var b strings.Builder
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(chunk[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}
	return b.String(), nil
}

var _ Engine = (*GoogleWeb)(nil)
