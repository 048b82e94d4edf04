// Package asr defines the Engine interface for speech recognition backends.
//
// An engine wraps a Whisper implementation (the whisper.cpp CGO bindings or
// a running whisper-server) and exposes batch recognition: the pipeline
// hands it one buffered utterance of 16 kHz mono samples and receives timed,
// scored segments back. Translation into English is the same call with
// TaskTranslate, Whisper's built-in second task.
//
// Recognition is blocking and potentially slow; callers are expected to run
// it from a dedicated worker and bound it with the context. Implementations
// must be safe for concurrent use unless documented otherwise.
package asr

import "context"

// Task selects what the engine produces from the audio.
type Task string

const (
	// TaskTranscribe produces text in the spoken language.
	TaskTranscribe Task = "transcribe"
	// TaskTranslate produces an English translation of the speech.
	TaskTranslate Task = "translate"
)

// Engine is the abstraction over any Whisper backend.
type Engine interface {
	// Recognize runs inference over samples (16 kHz mono float32 in [-1, 1])
	// and returns the recognized segments. Returns ErrCanceled when ctx is
	// cancelled mid-inference, an *EngineError for backend failures.
	Recognize(ctx context.Context, samples []float32, opts Options) (Result, error)

	// Close releases the model and any backend resources. Safe to call more
	// than once.
	Close() error
}
