package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Dadangdut33/speech-translate/internal/config"
	"github.com/Dadangdut33/speech-translate/internal/resilience"
	"github.com/Dadangdut33/speech-translate/internal/segment"
	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/translate"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad/energy"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad/silero"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad/webrtc"
)

// buildGate constructs the voice gate for one source. The webrtc and silero
// detectors are wrapped so an inference failure downgrades to the energy
// gate for the rest of the session instead of stalling capture.
func buildGate(cfg config.GateConfig, logger *slog.Logger) (vad.Gate, error) {
	vcfg := vad.Config{SampleRate: audio.RecognitionRate, Sensitivity: cfg.Sensitivity}

	var eg vad.Gate
	if cfg.ThresholdDB != 0 {
		eg = energy.NewWithThreshold(cfg.ThresholdDB)
	} else {
		eg = energy.New(vcfg)
	}

	switch cfg.Backend {
	case vad.BackendEnergy, "":
		return eg, nil
	case vad.BackendWebRTC:
		g, err := webrtc.New(vcfg)
		if err != nil {
			return nil, fmt.Errorf("session: webrtc gate: %w", err)
		}
		return vad.WithFallback(g, eg, logger), nil
	case vad.BackendSilero:
		g, err := silero.New(vcfg, cfg.SileroModel)
		if err != nil {
			return nil, fmt.Errorf("session: silero gate: %w", err)
		}
		return vad.WithFallback(g, eg, logger), nil
	}
	return nil, fmt.Errorf("session: unknown gate backend %q", cfg.Backend)
}

// NewTranslator constructs the text translation engine, wrapped in retry
// and failover. Returns nil for the none and whisper engines: the former
// disables translation, the latter runs through the recognition model
// instead. Shared with the file pipeline, which translates with the same
// engine selection.
func NewTranslator(cfg config.TranslationConfig) (translate.Engine, error) {
	switch cfg.Engine {
	case config.TranslatorNone, config.TranslatorWhisper, "":
		return nil, nil
	}

	client, err := translate.NewHTTPClient(cfg.Proxies, time.Duration(cfg.TimeoutS)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("session: translation client: %w", err)
	}

	var primary translate.Engine
	switch cfg.Engine {
	case config.TranslatorLibre:
		opts := []translate.LibreOption{translate.WithLibreHTTPClient(client)}
		if cfg.LibreAPIKey != "" {
			opts = append(opts, translate.WithLibreAPIKey(cfg.LibreAPIKey))
		}
		primary, err = translate.NewLibreTranslate(cfg.LibreEndpoint, opts...)
		if err != nil {
			return nil, fmt.Errorf("session: libretranslate: %w", err)
		}
	case config.TranslatorMyMemory:
		opts := []translate.MyMemoryOption{translate.WithMyMemoryHTTPClient(client)}
		if cfg.MyMemoryEmail != "" {
			opts = append(opts, translate.WithMyMemoryEmail(cfg.MyMemoryEmail))
		}
		primary = translate.NewMyMemory(opts...)
	case config.TranslatorGoogle:
		primary = translate.NewGoogleWeb(translate.WithGoogleWebHTTPClient(client))
	default:
		return nil, fmt.Errorf("session: unknown translation engine %q", cfg.Engine)
	}

	fb := resilience.NewTranslateFallback(primary, resilience.FallbackConfig{}, resilience.RetryConfig{})
	if cfg.Engine != config.TranslatorGoogle {
		// The keyless Google web endpoint backs up the configured engine.
		fb.AddFallback(translate.NewGoogleWeb(translate.WithGoogleWebHTTPClient(client)))
	}
	return fb, nil
}

// segmenterConfig maps one source's timing knobs onto the segmenter.
func segmenterConfig(sc config.SegmentConfig, gateEnabled bool) segment.Config {
	return segment.Config{
		TranscribeRate:  time.Duration(sc.TranscribeRateMS) * time.Millisecond,
		MaxBuffer:       time.Duration(sc.MaxBufferS * float64(time.Second)),
		SilenceTail:     time.Duration(sc.SilenceTailMS) * time.Millisecond,
		MinInputLength:  time.Duration(sc.MinInputLengthS * float64(time.Second)),
		AutoBreak:       sc.AutoBreakEnabled(),
		ThresholdEnable: gateEnabled,
	}
}
