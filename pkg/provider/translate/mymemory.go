package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const myMemoryEndpoint = "https://api.mymemory.translated.net/get"

// MyMemory uses the free MyMemory translation API. It needs a concrete
// source language (no auto-detection) and enforces a per-request size cap,
// so batches should stay small.
type MyMemory struct {
	endpoint   string
	email      string
	httpClient *http.Client
}

// MyMemoryOption is a functional option for configuring a MyMemory engine.
type MyMemoryOption func(*MyMemory)

// WithMyMemoryEmail attaches a contact address to requests, which raises
// the API's daily quota.
func WithMyMemoryEmail(email string) MyMemoryOption {
	return func(m *MyMemory) { m.email = email }
}

// WithMyMemoryHTTPClient replaces the default HTTP client.
func WithMyMemoryHTTPClient(c *http.Client) MyMemoryOption {
	return func(m *MyMemory) { m.httpClient = c }
}

// WithMyMemoryEndpoint overrides the API endpoint, for tests.
func WithMyMemoryEndpoint(endpoint string) MyMemoryOption {
	return func(m *MyMemory) { m.endpoint = endpoint }
}

// NewMyMemory creates a MyMemory engine.
func NewMyMemory(opts ...MyMemoryOption) *MyMemory {
	m := &MyMemory{
		endpoint:   myMemoryEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *MyMemory) Name() string { return "mymemory" }

func (m *MyMemory) Supports(lang string) bool {
	_, ok := iso639[lang]
	return ok
}

func (m *MyMemory) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	if source == "" || source == "auto" {
		return nil, fmt.Errorf("%w: mymemory needs an explicit source language", ErrUnsupportedLanguage)
	}

	q := url.Values{}
	q.Set("q", joinBatch(texts))
	q.Set("langpair", source+"|"+target)
	if m.email != "" {
		q.Set("de", m.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("mymemory: create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mymemory: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mymemory: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mymemory: HTTP %d", resp.StatusCode)
	}

	var result struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus  json.Number `json:"responseStatus"`
		ResponseDetails string      `json:"responseDetails"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("mymemory: parse response: %w", err)
	}
	// The API reports errors as 200 with a non-200 responseStatus.
	if s, err := result.ResponseStatus.Int64(); err == nil && s != 200 {
		return nil, fmt.Errorf("mymemory: API status %d: %s", s, result.ResponseDetails)
	}
	return splitBatch(result.ResponseData.TranslatedText, len(texts)), nil
}

var _ Engine = (*MyMemory)(nil)
