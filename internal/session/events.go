package session

import "fmt"

// EventKind classifies a runtime event posted by a worker.
type EventKind string

const (
	// EventOverrun reports capture frames dropped under backpressure.
	EventOverrun EventKind = "overrun"
	// EventRecognitionFailure reports a failed recognition call. The
	// emission is dropped and the session keeps running.
	EventRecognitionFailure EventKind = "recognition_failure"
	// EventTranslationFailure reports a failed translation. The transcript
	// is kept, the translation for this result is dropped.
	EventTranslationFailure EventKind = "translation_failure"
	// EventFatal reports an error the session cannot survive. The
	// coordinator transitions to stopping.
	EventFatal EventKind = "fatal"
)

// Event is one typed error event. Workers never return errors to the
// coordinator directly; they post events onto the status channel and keep
// going, and the coordinator decides whether the session continues.
type Event struct {
	Kind   EventKind
	Source string
	Err    error

	// Dropped is the number of frames lost, for EventOverrun.
	Dropped int64
}

func (e Event) String() string {
	if e.Err == nil {
		return fmt.Sprintf("%s source=%s", e.Kind, e.Source)
	}
	return fmt.Sprintf("%s source=%s: %v", e.Kind, e.Source, e.Err)
}
