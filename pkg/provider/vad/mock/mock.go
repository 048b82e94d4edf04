// Package mock provides test doubles for the vad package interfaces.
//
// Use Gate to script per-frame decisions and inspect the frames submitted
// for detection.
//
// Example:
//
//	gate := &mock.Gate{Decisions: []bool{false, true, true}}
package mock

import (
	"sync"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

// Gate is a mock implementation of vad.Gate.
type Gate struct {
	mu sync.Mutex

	// Decisions are returned by successive IsSpeech calls. When exhausted,
	// Default is returned.
	Decisions []bool

	// Default is the decision returned once Decisions runs out.
	Default bool

	// IsSpeechErr, if non-nil, is returned by every IsSpeech call.
	IsSpeechErr error

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// --- Call records ---

	// Frames records a copy of every frame passed to IsSpeech, in order.
	Frames []audio.Conditioned

	// ResetCallCount is the number of times Reset was called.
	ResetCallCount int

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int
}

// IsSpeech records the call and returns the next scripted decision.
func (g *Gate) IsSpeech(f audio.Conditioned) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Frames = append(g.Frames, f)
	if g.IsSpeechErr != nil {
		return false, g.IsSpeechErr
	}
	if n := len(g.Frames) - 1; n < len(g.Decisions) {
		return g.Decisions[n], nil
	}
	return g.Default, nil
}

// Reset records the call by incrementing ResetCallCount.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ResetCallCount++
}

// Close records the call and returns CloseErr.
func (g *Gate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CloseCallCount++
	return g.CloseErr
}

// ResetCalls clears all recorded call history. Thread-safe.
func (g *Gate) ResetCalls() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Frames = nil
	g.ResetCallCount = 0
	g.CloseCallCount = 0
}

// Ensure Gate implements vad.Gate at compile time.
var _ vad.Gate = (*Gate)(nil)
