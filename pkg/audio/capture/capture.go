// Package capture opens platform audio devices for live recording. The
// non-Linux implementation is backed by malgo (miniaudio), the Linux one by
// the PulseAudio native protocol. Loopback capture records what the machine
// is playing: WASAPI loopback on Windows, monitor sources on PulseAudio.
package capture

// Kind selects which side of the audio stack a device sits on.
type Kind int

const (
	// Microphone is a regular recording device.
	Microphone Kind = iota
	// Loopback records the output of a playback device.
	Loopback
)

func (k Kind) String() string {
	if k == Loopback {
		return "loopback"
	}
	return "microphone"
}

// DeviceInfo describes one capture or playback device. ID is an opaque
// platform identifier, stable enough to store in configuration.
type DeviceInfo struct {
	ID      string
	Name    string
	Kind    Kind
	Default bool
}

// DataFunc receives interleaved 16-bit little-endian PCM as the device
// produces it. It runs on the backend's audio thread and must not block.
type DataFunc func(pcm []byte)

// Config selects and parameterizes the device a stream opens.
type Config struct {
	// SampleRate and Channels are the format the stream requests from the
	// device. Backends that cannot honor them exactly convert internally.
	SampleRate uint32
	Channels   uint32
	// Kind chooses microphone or loopback capture.
	Kind Kind
	// DeviceID selects a specific device from Devices. Empty means the
	// system default for the given kind.
	DeviceID string
}

// Context owns a connection to the platform audio backend and opens
// streams on it. A single context serves any number of streams.
type Context interface {
	// Devices enumerates devices of the given kind. Loopback lists the
	// playback devices (or their monitors) whose output can be recorded.
	Devices(kind Kind) ([]DeviceInfo, error)
	// NewStream prepares a capture stream delivering PCM to fn. The stream
	// is created stopped. Returns audio.ErrDeviceUnavailable if no device
	// matches the config, audio.ErrDeviceOpenFailed if it cannot be opened.
	NewStream(cfg Config, fn DataFunc) (Stream, error)
	Close() error
}

// Stream is one running device capture.
type Stream interface {
	Start() error
	Stop()
	Close()
}
