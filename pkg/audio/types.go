// Package audio defines the shared audio types used across the pipeline and
// the frame conditioner that normalises captured audio for recognition.
//
// Frames are the atomic unit of audio transport: read from capture streams,
// conditioned to the recognition format, gated by VAD, and accumulated by the
// segmenter. All PCM data is 16-bit signed little-endian.
package audio

import "time"

// RecognitionRate is the sample rate expected by the recognition engine.
const RecognitionRate = 16000

// SilenceFloorDB is the loudness reported for an all-zero frame. True silence
// has no finite dBFS value; −200 is far below any representable 16-bit signal.
const SilenceFloorDB = -200.0

// Frame represents one fixed-size chunk of PCM audio read from a capture
// stream. Sample rate and channel count are whatever the device produced.
type Frame struct {
	// Data is raw 16-bit signed little-endian PCM, channel-interleaved.
	Data []byte

	// SampleRate in Hz (e.g. 48000 for a typical device, 16000 after conditioning).
	SampleRate int

	// Channels is the number of interleaved channels. 1 after conditioning.
	Channels int

	// Timestamp marks when this frame started, relative to stream start.
	Timestamp time.Duration
}

// Samples returns the number of samples per channel in the frame.
func (f Frame) Samples() int {
	if f.Channels <= 0 {
		return 0
	}
	return len(f.Data) / 2 / f.Channels
}

// Duration returns the play time of the frame.
func (f Frame) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.Samples()) * time.Second / time.Duration(f.SampleRate)
}

// End returns the timestamp just past the last sample of the frame.
func (f Frame) End() time.Duration {
	return f.Timestamp + f.Duration()
}

// Conditioned is a frame that has passed through the conditioner: guaranteed
// 16-bit mono PCM at [RecognitionRate], with its loudness precomputed.
type Conditioned struct {
	Frame

	// DBFS is the RMS loudness of the frame in decibels relative to full
	// scale. Always ≤ 0; an all-zero frame reports [SilenceFloorDB].
	DBFS float64
}
