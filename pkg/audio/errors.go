package audio

import "errors"

var (
	// ErrDeviceUnavailable means the requested capture device does not
	// exist or the platform cannot provide it (e.g. loopback capture on a
	// backend without monitor sources).
	ErrDeviceUnavailable = errors.New("audio: capture device unavailable")

	// ErrDeviceOpenFailed means the device exists but could not be opened,
	// typically because another application holds it exclusively.
	ErrDeviceOpenFailed = errors.New("audio: capture device open failed")
)
