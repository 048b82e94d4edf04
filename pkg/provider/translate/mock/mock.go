// Package mock provides test doubles for the translate package interfaces.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/Dadangdut33/speech-translate/pkg/provider/translate"
)

// TranslateCall records a single invocation of Engine.Translate.
type TranslateCall struct {
	Texts  []string
	Source string
	Target string
}

// Engine is a mock implementation of translate.Engine. By default it
// "translates" by prefixing each text, which keeps assertions readable.
type Engine struct {
	mu sync.Mutex

	// EngineName is returned by Name. Defaults to "mock".
	EngineName string

	// Prefix is prepended to every input text. Defaults to "tr:".
	Prefix string

	// TranslateErr, if non-nil, is returned by every Translate call.
	TranslateErr error

	// TranslateFn, if non-nil, handles the call instead of the default
	// prefixing behavior.
	TranslateFn func(ctx context.Context, texts []string, source, target string) ([]string, error)

	// Unsupported lists language codes Supports rejects.
	Unsupported []string

	// TranslateCalls records every call to Translate in order.
	TranslateCalls []TranslateCall
}

func (e *Engine) Name() string {
	if e.EngineName != "" {
		return e.EngineName
	}
	return "mock"
}

func (e *Engine) Supports(lang string) bool {
	for _, u := range e.Unsupported {
		if u == lang {
			return false
		}
	}
	return true
}

// Translate records the call and returns prefixed copies of the inputs.
func (e *Engine) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	e.mu.Lock()
	cp := make([]string, len(texts))
	copy(cp, texts)
	e.TranslateCalls = append(e.TranslateCalls, TranslateCall{Texts: cp, Source: source, Target: target})
	fn := e.TranslateFn
	err := e.TranslateErr
	prefix := e.Prefix
	e.mu.Unlock()

	if fn != nil {
		return fn(ctx, texts, source, target)
	}
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "tr:"
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = prefix + strings.TrimSpace(t)
	}
	return out, nil
}

// ResetCalls clears all recorded call history. Thread-safe.
func (e *Engine) ResetCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.TranslateCalls = nil
}

// Ensure Engine implements translate.Engine at compile time.
var _ translate.Engine = (*Engine)(nil)
