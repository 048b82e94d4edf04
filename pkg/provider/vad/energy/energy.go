// Package energy implements a loudness-threshold voice gate. It has no
// model and no external dependencies, which makes it the fallback of last
// resort for the smarter detectors.
package energy

import (
	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

// thresholds maps a sensitivity level to the minimum frame loudness, in
// dBFS, that still counts as speech.
var thresholds = [4]float64{-55, -45, -38, -30}

// Gate classifies frames by RMS loudness alone.
type Gate struct {
	threshold float64
}

// New returns a gate using the loudness threshold derived from
// cfg.Sensitivity. Sensitivity values outside 0..3 are clamped.
func New(cfg vad.Config) *Gate {
	s := cfg.Sensitivity
	if s < 0 {
		s = 0
	}
	if s > 3 {
		s = 3
	}
	return &Gate{threshold: thresholds[s]}
}

// NewWithThreshold returns a gate with an explicit dBFS threshold.
func NewWithThreshold(db float64) *Gate {
	return &Gate{threshold: db}
}

func (g *Gate) IsSpeech(f audio.Conditioned) (bool, error) {
	return f.DBFS >= g.threshold, nil
}

func (g *Gate) Reset() {}

func (g *Gate) Close() error { return nil }

var _ vad.Gate = (*Gate)(nil)
