// Package mock provides test doubles for the asr package interfaces.
//
// Use Engine to script recognition results and inspect the samples and
// options each call received.
package mock

import (
	"context"
	"sync"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

// RecognizeCall records a single invocation of Engine.Recognize.
type RecognizeCall struct {
	// Samples is a copy of the audio passed in.
	Samples []float32

	// Opts are the options passed in.
	Opts asr.Options
}

// Engine is a mock implementation of asr.Engine.
type Engine struct {
	mu sync.Mutex

	// Results are returned by successive Recognize calls. When exhausted,
	// the zero Result is returned.
	Results []asr.Result

	// RecognizeErr, if non-nil, is returned by every Recognize call.
	RecognizeErr error

	// RecognizeFn, if non-nil, handles the call instead of Results and
	// RecognizeErr. Useful for blocking until a test releases it.
	RecognizeFn func(ctx context.Context, samples []float32, opts asr.Options) (asr.Result, error)

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// --- Call records ---

	// RecognizeCalls records every call to Recognize in order.
	RecognizeCalls []RecognizeCall

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int
}

// Recognize records the call and returns the next scripted result.
func (e *Engine) Recognize(ctx context.Context, samples []float32, opts asr.Options) (asr.Result, error) {
	e.mu.Lock()
	cp := make([]float32, len(samples))
	copy(cp, samples)
	e.RecognizeCalls = append(e.RecognizeCalls, RecognizeCall{Samples: cp, Opts: opts})
	idx := len(e.RecognizeCalls) - 1
	fn := e.RecognizeFn
	e.mu.Unlock()

	if fn != nil {
		return fn(ctx, samples, opts)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.RecognizeErr != nil {
		return asr.Result{}, e.RecognizeErr
	}
	if idx < len(e.Results) {
		return e.Results[idx], nil
	}
	return asr.Result{}, nil
}

// Close records the call and returns CloseErr.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.CloseCallCount++
	return e.CloseErr
}

// ResetCalls clears all recorded call history. Thread-safe.
func (e *Engine) ResetCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.RecognizeCalls = nil
	e.CloseCallCount = 0
}

// Ensure Engine implements asr.Engine at compile time.
var _ asr.Engine = (*Engine)(nil)
