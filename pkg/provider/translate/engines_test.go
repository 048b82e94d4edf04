package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLibreTranslate(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("path = %s, want /translate", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req["q"] != "hello\nworld" {
			t.Errorf("q = %q, want newline-joined batch", req["q"])
		}
		if req["source"] != "en" || req["target"] != "de" {
			t.Errorf("pair = %s|%s, want en|de", req["source"], req["target"])
		}
		if req["api_key"] != "secret" {
			t.Errorf("api_key = %q, want secret", req["api_key"])
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "hallo\nwelt"})
	}))
	defer ts.Close()

	eng, err := NewLibreTranslate(ts.URL, WithLibreAPIKey("secret"))
	if err != nil {
		t.Fatalf("NewLibreTranslate: %v", err)
	}
	got, err := eng.Translate(context.Background(), []string{"hello", "world"}, "en", "de")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(got) != 2 || got[0] != "hallo" || got[1] != "welt" {
		t.Fatalf("got %v, want [hallo welt]", got)
	}
}

func TestLibreTranslateAPIError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid API key"})
	}))
	defer ts.Close()

	eng, err := NewLibreTranslate(ts.URL)
	if err != nil {
		t.Fatalf("NewLibreTranslate: %v", err)
	}
	if _, err := eng.Translate(context.Background(), []string{"x"}, "en", "de"); err == nil {
		t.Fatal("expected error from HTTP 403")
	}
}

func TestMyMemory(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("langpair"); got != "en|es" {
			t.Errorf("langpair = %q, want en|es", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"responseData":   map[string]string{"translatedText": "hola"},
			"responseStatus": 200,
		})
	}))
	defer ts.Close()

	eng := NewMyMemory(WithMyMemoryEndpoint(ts.URL))
	got, err := eng.Translate(context.Background(), []string{"hello"}, "en", "es")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(got) != 1 || got[0] != "hola" {
		t.Fatalf("got %v, want [hola]", got)
	}
}

func TestMyMemoryRejectsAutoSource(t *testing.T) {
	t.Parallel()

	eng := NewMyMemory()
	if _, err := eng.Translate(context.Background(), []string{"x"}, "auto", "es"); err == nil {
		t.Fatal("mymemory requires an explicit source language")
	}
}

func TestMyMemoryAPIStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"responseData":    map[string]string{"translatedText": ""},
			"responseStatus":  "403",
			"responseDetails": "daily quota exceeded",
		})
	}))
	defer ts.Close()

	eng := NewMyMemory(WithMyMemoryEndpoint(ts.URL))
	if _, err := eng.Translate(context.Background(), []string{"x"}, "en", "es"); err == nil {
		t.Fatal("expected error for embedded API status")
	}
}

func TestGoogleWeb(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tl"); got != "ja" {
			t.Errorf("tl = %q, want ja", got)
		}
		// Nested-array shape of the widget endpoint.
		w.Write([]byte(`[[["こんにちは\n","hello\n",null],["世界","world",null]],null,"en"]`))
	}))
	defer ts.Close()

	eng := NewGoogleWeb(WithGoogleWebEndpoint(ts.URL))
	got, err := eng.Translate(context.Background(), []string{"hello", "world"}, "en", "ja")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(got) != 2 || got[0] != "こんにちは" || got[1] != "世界" {
		t.Fatalf("got %v, want the two reassembled lines", got)
	}
}

func TestNewHTTPClientRejectsBadProxy(t *testing.T) {
	t.Parallel()

	if _, err := NewHTTPClient([]string{"::not-a-url"}, 0); err == nil {
		t.Fatal("expected error for malformed proxy URL")
	}
}

func TestNewHTTPClientNoProxies(t *testing.T) {
	t.Parallel()

	c, err := NewHTTPClient(nil, 0)
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	if c.Transport != nil {
		t.Fatal("proxy-less client should keep the default transport")
	}
}
