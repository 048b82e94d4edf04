// Package session runs the live capture-to-caption pipeline. A Coordinator
// owns the session lifecycle as a small state machine and supervises one
// worker per enabled capture source, a single recognition worker, and an
// event loop, all communicating over bounded channels.
package session

import (
	"time"

	"github.com/Dadangdut33/speech-translate/internal/render"
)

// State is the coordinator lifecycle state.
type State int32

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StateLoading means the recognition model is being acquired.
	StateLoading
	// StateRunning means the pipeline is processing audio.
	StateRunning
	// StatePaused means capture continues but frames are discarded and the
	// utterance buffers are cleared.
	StatePaused
	// StateStopping means an ordered drain is in progress.
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// Status is a point-in-time snapshot of the session, safe to poll from the
// UI at its own refresh rate.
type Status struct {
	// State is the lifecycle state at snapshot time.
	State State

	// Language is the last language the recognition engine reported, empty
	// until the first result arrives.
	Language string

	// Recognitions and Translations count completed engine calls.
	Recognitions int64
	Translations int64

	// Failures counts recoverable engine errors the session survived.
	Failures int64

	// Overruns counts capture frames dropped because the pipeline fell
	// behind.
	Overruns int64

	// Buffered is the audio currently held per source, keyed by source
	// name.
	Buffered map[string]time.Duration
}

// UISink receives caption updates pushed by the coordinator. Implementations
// must return quickly; they are called from the recognition worker.
//
// The transcript surface shows recognized speech, the translation surface
// the translated text. Sessions without a translation engine only ever call
// SetTranscript.
type UISink interface {
	SetTranscript(text string, spans []render.Span)
	SetTranslation(text string, spans []render.Span)
}

// NopSink discards all updates. Useful as a default and in tests that only
// inspect the composers.
type NopSink struct{}

func (NopSink) SetTranscript(string, []render.Span)  {}
func (NopSink) SetTranslation(string, []render.Span) {}
