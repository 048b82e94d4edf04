// Package silero wraps the Silero neural voice activity detector. It is the
// most accurate gate but needs an ONNX model file and the onnxruntime
// library at runtime.
package silero

import (
	"fmt"
	"sync"

	"github.com/streamer45/silero-vad-go/speech"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

// windowSamples is the frame size the Silero model consumes at 16 kHz.
const windowSamples = 512

// thresholds maps a sensitivity level to the model's speech probability
// threshold.
var thresholds = [4]float64{0.3, 0.5, 0.65, 0.8}

// Gate runs the Silero detector in streaming mode, carrying in-speech state
// across frames. Partial windows are buffered until 512 samples accumulate.
type Gate struct {
	mu       sync.Mutex
	detector *speech.Detector
	pending  []float32
	inSpeech bool
	closed   bool
}

// New loads the Silero model at modelPath and returns a streaming gate.
func New(cfg vad.Config, modelPath string) (*Gate, error) {
	s := cfg.Sensitivity
	if s < 0 {
		s = 0
	}
	if s > 3 {
		s = 3
	}
	detector, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:  modelPath,
		SampleRate: cfg.SampleRate,
		Threshold:  float32(thresholds[s]),
	})
	if err != nil {
		return nil, fmt.Errorf("loading silero model %s: %w", modelPath, err)
	}
	return &Gate{detector: detector}, nil
}

func (g *Gate) IsSpeech(f audio.Conditioned) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false, fmt.Errorf("silero vad: gate closed")
	}

	g.pending = append(g.pending, audio.Float32Samples(f.Data)...)

	speechSeen := g.inSpeech
	for len(g.pending) >= windowSamples {
		window := g.pending[:windowSamples]
		g.pending = g.pending[windowSamples:]

		event, err := g.detector.DetectStreamFrame(window)
		if err != nil {
			// The model occasionally reports an end without a matching
			// start after state was cleared mid-utterance; resynchronize
			// instead of failing the frame.
			g.detector.Reset()
			g.inSpeech = false
			continue
		}
		if event != nil {
			if event.IsStart {
				g.inSpeech = true
			}
			if event.IsEnd {
				g.inSpeech = false
			}
		}
		speechSeen = speechSeen || g.inSpeech
	}
	return speechSeen, nil
}

func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.detector.Reset()
	g.pending = nil
	g.inSpeech = false
}

func (g *Gate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	g.pending = nil
	return g.detector.Destroy()
}

var _ vad.Gate = (*Gate)(nil)
