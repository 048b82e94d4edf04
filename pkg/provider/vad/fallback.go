package vad

import (
	"log/slog"
	"sync"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
)

// WithFallback wraps primary so that a detection failure downgrades to the
// fallback gate instead of stalling the pipeline. The first failure is
// logged; subsequent frames go straight to the fallback until Reset.
func WithFallback(primary, fallback Gate, logger *slog.Logger) Gate {
	return &fallbackGate{primary: primary, fallback: fallback, logger: logger}
}

type fallbackGate struct {
	primary  Gate
	fallback Gate
	logger   *slog.Logger

	mu       sync.Mutex
	degraded bool
}

func (g *fallbackGate) IsSpeech(f audio.Conditioned) (bool, error) {
	g.mu.Lock()
	degraded := g.degraded
	g.mu.Unlock()

	if !degraded {
		ok, err := g.primary.IsSpeech(f)
		if err == nil {
			return ok, nil
		}
		g.mu.Lock()
		if !g.degraded {
			g.degraded = true
			g.logger.Warn("voice detection failed, falling back to energy gate", "error", err)
		}
		g.mu.Unlock()
	}
	return g.fallback.IsSpeech(f)
}

func (g *fallbackGate) Reset() {
	g.mu.Lock()
	g.degraded = false
	g.mu.Unlock()
	g.primary.Reset()
	g.fallback.Reset()
}

func (g *fallbackGate) Close() error {
	err := g.primary.Close()
	if cerr := g.fallback.Close(); err == nil {
		err = cerr
	}
	return err
}

var _ Gate = (*fallbackGate)(nil)
