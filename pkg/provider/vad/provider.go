// Package vad defines the Gate interface for voice activity detection
// backends.
//
// A gate classifies each conditioned audio frame as speech or not, letting
// the pipeline drop silence before it reaches the recognition buffer. Gates
// are stateful per stream: implementations may keep smoothing windows or
// model state between frames, so each audio source gets its own gate.
//
// Detection is synchronous: IsSpeech returns immediately, so a gate can sit
// between capture and the segmenter without adding latency. A Gate is
// confined to one goroutine unless the implementation documents otherwise.
package vad

import "github.com/Dadangdut33/speech-translate/pkg/audio"

// Backend names a gate implementation, as selected in configuration.
type Backend string

const (
	// BackendEnergy is a plain RMS loudness threshold.
	BackendEnergy Backend = "energy"
	// BackendWebRTC is the GMM detector from the WebRTC project.
	BackendWebRTC Backend = "webrtc"
	// BackendSilero is the Silero neural detector (requires an ONNX model).
	BackendSilero Backend = "silero"
)

// Config holds the parameters shared by all gate backends. Backend-specific
// knobs live in each implementation's constructor.
type Config struct {
	// SampleRate is the audio sample rate in Hz of the frames passed to
	// IsSpeech. The pipeline always conditions to 16000 first.
	SampleRate int

	// Sensitivity maps to the backend's aggressiveness: 0 (most permissive)
	// to 3 (most aggressive). Backends with a continuous threshold derive
	// it from this value.
	Sensitivity int
}

// Gate classifies conditioned frames as speech.
type Gate interface {
	// IsSpeech reports whether the frame contains speech. The frame must be
	// 16-bit mono PCM at the configured sample rate. Frame sizes the
	// backend cannot evaluate return an error rather than a guess.
	//
	// Called synchronously in the pipeline loop; must not block.
	IsSpeech(f audio.Conditioned) (bool, error)

	// Reset clears accumulated detection state without closing the gate.
	// Use it when the stream is interrupted so stale state from the
	// previous segment does not affect subsequent frames.
	Reset()

	// Close releases backend resources. Safe to call more than once.
	Close() error
}
