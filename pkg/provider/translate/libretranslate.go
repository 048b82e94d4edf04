package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LibreTranslate talks to a LibreTranslate instance, self-hosted or public.
type LibreTranslate struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// LibreOption is a functional option for configuring a LibreTranslate
// engine.
type LibreOption func(*LibreTranslate)

// WithLibreAPIKey sets the api_key field sent with every request. Public
// instances usually require one.
func WithLibreAPIKey(key string) LibreOption {
	return func(l *LibreTranslate) { l.apiKey = key }
}

// WithLibreHTTPClient replaces the default HTTP client.
func WithLibreHTTPClient(c *http.Client) LibreOption {
	return func(l *LibreTranslate) { l.httpClient = c }
}

// NewLibreTranslate creates an engine for the instance at endpoint
// (e.g. "https://translate.argosopentech.com" or "http://localhost:5000").
func NewLibreTranslate(endpoint string, opts ...LibreOption) (*LibreTranslate, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("translate: libretranslate endpoint must not be empty")
	}
	l := &LibreTranslate{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

func (l *LibreTranslate) Name() string { return "libretranslate" }

func (l *LibreTranslate) Supports(lang string) bool {
	_, ok := libreLanguages[lang]
	return ok
}

func (l *LibreTranslate) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	if source == "" {
		source = "auto"
	}
	payload := map[string]string{
		"q":      joinBatch(texts),
		"source": source,
		"target": target,
		"format": "text",
	}
	if l.apiKey != "" {
		payload["api_key"] = l.apiKey
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("libretranslate: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("libretranslate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("libretranslate: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("libretranslate: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("libretranslate: HTTP %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("libretranslate: HTTP %d", resp.StatusCode)
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("libretranslate: parse response: %w", err)
	}
	return splitBatch(result.TranslatedText, len(texts)), nil
}

var _ Engine = (*LibreTranslate)(nil)
