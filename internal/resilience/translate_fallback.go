package resilience

import (
	"context"
	"errors"
	"strings"

	"github.com/Dadangdut33/speech-translate/pkg/provider/translate"
)

// TranslateFallback implements [translate.Engine] with retry and automatic
// failover across multiple text translation backends. Each backend has its
// own circuit breaker; transient failures are retried with exponential
// backoff before the next backend is tried.
type TranslateFallback struct {
	group *FallbackGroup[translate.Engine]
	retry RetryConfig
}

// Compile-time interface assertion.
var _ translate.Engine = (*TranslateFallback)(nil)

// NewTranslateFallback creates a [TranslateFallback] with primary as the
// preferred backend.
func NewTranslateFallback(primary translate.Engine, cfg FallbackConfig, retry RetryConfig) *TranslateFallback {
	return &TranslateFallback{
		group: NewFallbackGroup(primary, primary.Name(), cfg),
		retry: retry,
	}
}

// AddFallback registers an additional translation engine as a fallback.
func (f *TranslateFallback) AddFallback(engine translate.Engine) {
	f.group.AddFallback(engine.Name(), engine)
}

// Name joins the backend names in try order.
func (f *TranslateFallback) Name() string {
	return strings.Join(f.group.Names(), "+")
}

// Translate sends texts to the first healthy backend. A backend that does
// not support the language pair is skipped without burning retries or
// tripping its breaker towards unrelated requests.
func (f *TranslateFallback) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	return ExecuteWithResult(f.group, func(e translate.Engine) ([]string, error) {
		return RetryWithResult(ctx, f.retry, func() ([]string, error) {
			out, err := e.Translate(ctx, texts, source, target)
			if errors.Is(err, translate.ErrUnsupportedLanguage) {
				return nil, Permanent(err)
			}
			return out, err
		})
	})
}

// Supports reports whether any backend supports lang.
func (f *TranslateFallback) Supports(lang string) bool {
	for _, e := range f.group.Values() {
		if e.Supports(lang) {
			return true
		}
	}
	return false
}
