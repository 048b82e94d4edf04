// Package webrtc wraps the WebRTC project's GMM voice activity detector.
// It only evaluates 10, 20 or 30 ms frames, so arbitrary input frames are
// split into the largest sub-frames that fit; a frame counts as speech when
// any sub-frame does.
package webrtc

import (
	"fmt"
	"sync"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

// Gate runs WebRTC VAD over conditioned frames.
type Gate struct {
	mu         sync.Mutex
	inner      *webrtcvad.VAD
	sampleRate int
	closed     bool
}

// New creates a gate with the given config. cfg.Sensitivity maps directly
// to the detector's aggressiveness mode (0 least, 3 most aggressive).
func New(cfg vad.Config) (*Gate, error) {
	inner, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("creating webrtc vad: %w", err)
	}
	mode := cfg.Sensitivity
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}
	if err := inner.SetMode(mode); err != nil {
		return nil, fmt.Errorf("setting webrtc vad mode %d: %w", mode, err)
	}
	return &Gate{inner: inner, sampleRate: cfg.SampleRate}, nil
}

func (g *Gate) IsSpeech(f audio.Conditioned) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false, fmt.Errorf("webrtc vad: gate closed")
	}

	pcm := f.Data
	for len(pcm) > 0 {
		n := g.subFrameBytes(len(pcm))
		if n == 0 {
			// Remainder shorter than 10 ms; nothing left to evaluate.
			break
		}
		active, err := g.inner.Process(g.sampleRate, pcm[:n])
		if err != nil {
			return false, fmt.Errorf("webrtc vad process: %w", err)
		}
		if active {
			return true, nil
		}
		pcm = pcm[n:]
	}
	return false, nil
}

// subFrameBytes returns the byte length of the largest valid sub-frame
// (30, 20 or 10 ms) not exceeding avail.
func (g *Gate) subFrameBytes(avail int) int {
	for _, ms := range [...]int{30, 20, 10} {
		n := g.sampleRate * ms / 1000 * 2
		if n <= avail && webrtcvad.ValidRateAndFrameLength(g.sampleRate, n/2) {
			return n
		}
	}
	return 0
}

// Reset is a no-op; the detector keeps no cross-frame state worth clearing.
func (g *Gate) Reset() {}

func (g *Gate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

var _ vad.Gate = (*Gate)(nil)
