package asr

import (
	"errors"
	"fmt"
)

// ErrCanceled is returned by Recognize when the context was cancelled
// before inference completed. Callers treat it as a normal shutdown signal,
// not a failure.
var ErrCanceled = errors.New("asr: recognition canceled")

// ErrModelNotFound is returned when the configured model file does not
// exist or cannot be loaded.
var ErrModelNotFound = errors.New("asr: model not found")

// ErrorKind classifies engine failures for reporting.
type ErrorKind string

const (
	// KindLoad covers failures while loading the model.
	KindLoad ErrorKind = "load"
	// KindInference covers failures during a Recognize call.
	KindInference ErrorKind = "inference"
	// KindTransport covers network failures talking to a whisper-server.
	KindTransport ErrorKind = "transport"
)

// EngineError is a classified backend failure.
type EngineError struct {
	Kind    ErrorKind
	Backend string
	Err     error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("asr %s: %s error: %v", e.Backend, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
