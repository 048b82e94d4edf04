package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Dadangdut33/speech-translate/internal/render"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr/whisper"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file means all defaults.
			return cfg, Validate(cfg)
		}
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if !cfg.Mic.Enabled && !cfg.Speaker.Enabled {
		slog.Warn("no capture source enabled; live sessions cannot start, only file processing will work")
	}

	errs = append(errs, validateSource("mic", cfg.Mic)...)
	errs = append(errs, validateSource("speaker", cfg.Speaker)...)
	errs = append(errs, validateRecognition(cfg.Recognition)...)
	errs = append(errs, validateTranslation(cfg.Translation)...)
	errs = append(errs, validateRender(cfg.Render)...)

	for i, f := range cfg.Export.Formats {
		if !f.IsValid() {
			errs = append(errs, fmt.Errorf("export.formats[%d] %q is invalid", i, f))
		}
	}

	return errors.Join(errs...)
}

func validateSource(name string, src SourceConfig) []error {
	var errs []error

	switch src.Gate.Backend {
	case vad.BackendEnergy, vad.BackendWebRTC, vad.BackendSilero, "":
	default:
		errs = append(errs, fmt.Errorf("%s.gate.backend %q is invalid; valid values: energy, webrtc, silero", name, src.Gate.Backend))
	}
	if src.Gate.Sensitivity < 0 || src.Gate.Sensitivity > 3 {
		errs = append(errs, fmt.Errorf("%s.gate.sensitivity %d is out of range [0, 3]", name, src.Gate.Sensitivity))
	}
	if src.Gate.Backend == vad.BackendSilero && src.Gate.SileroModel == "" {
		errs = append(errs, fmt.Errorf("%s.gate.silero_model is required for the silero backend", name))
	}
	if src.Gate.ThresholdDB > 0 {
		errs = append(errs, fmt.Errorf("%s.gate.threshold_db %.1f must be negative (dBFS)", name, src.Gate.ThresholdDB))
	}

	seg := src.Segment
	if seg.TranscribeRateMS <= 0 {
		errs = append(errs, fmt.Errorf("%s.segment.transcribe_rate_ms must be positive", name))
	}
	if seg.MaxBufferS <= 0 {
		errs = append(errs, fmt.Errorf("%s.segment.max_buffer_s must be positive", name))
	}
	if seg.SilenceTailMS <= 0 {
		errs = append(errs, fmt.Errorf("%s.segment.silence_tail_ms must be positive", name))
	}
	if seg.MinInputLengthS < 0 {
		errs = append(errs, fmt.Errorf("%s.segment.min_input_length_s must not be negative", name))
	}
	if seg.MaxBufferS > 0 && seg.MinInputLengthS > seg.MaxBufferS {
		errs = append(errs, fmt.Errorf("%s.segment.min_input_length_s %.1f exceeds max_buffer_s %.1f", name, seg.MinInputLengthS, seg.MaxBufferS))
	}

	return errs
}

func validateRecognition(rec RecognitionConfig) []error {
	var errs []error

	switch rec.Backend {
	case whisper.BackendNative:
		if rec.Model == "" {
			errs = append(errs, errors.New("recognition.model is required for the native backend"))
		}
	case whisper.BackendServer:
		if rec.ServerURL == "" {
			errs = append(errs, errors.New("recognition.server_url is required for the server backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("recognition.backend %q is invalid; valid values: native, server", rec.Backend))
	}

	switch rec.Preset {
	case asr.PresetGreedy, asr.PresetBeamSearch, asr.PresetCustom, "":
	default:
		errs = append(errs, fmt.Errorf("recognition.preset %q is invalid; valid values: greedy, beam_search, custom", rec.Preset))
	}
	if rec.BeamSize < 0 {
		errs = append(errs, fmt.Errorf("recognition.beam_size %d must not be negative", rec.BeamSize))
	}
	if rec.Temperature < 0 {
		errs = append(errs, fmt.Errorf("recognition.temperature %.2f must not be negative", rec.Temperature))
	}
	if rec.Threads < 0 {
		errs = append(errs, fmt.Errorf("recognition.threads %d must not be negative", rec.Threads))
	}

	if _, err := rec.Options(); err != nil {
		errs = append(errs, fmt.Errorf("recognition.whisper_args: %w", err))
	}

	return errs
}

func validateTranslation(tr TranslationConfig) []error {
	var errs []error

	if tr.Engine != "" && !tr.Engine.IsValid() {
		errs = append(errs, fmt.Errorf("translation.engine %q is invalid; valid values: none, whisper, libretranslate, mymemory, google", tr.Engine))
	}

	textEngine := tr.Engine == TranslatorLibre || tr.Engine == TranslatorMyMemory || tr.Engine == TranslatorGoogle
	if textEngine && tr.Target == "" {
		errs = append(errs, errors.New("translation.target is required for text translation engines"))
	}
	if tr.Engine == TranslatorLibre && tr.LibreEndpoint == "" {
		errs = append(errs, errors.New("translation.libre_endpoint is required for the libretranslate engine"))
	}
	if tr.Engine == TranslatorMyMemory && (tr.Source == "" || tr.Source == "auto") {
		errs = append(errs, errors.New("translation.source must name a language; mymemory cannot detect the source"))
	}

	for i, p := range tr.Proxies {
		u, err := url.Parse(p)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("translation.proxies[%d] %q is not a valid proxy URL", i, p))
		}
	}
	if tr.TimeoutS <= 0 {
		errs = append(errs, errors.New("translation.timeout_s must be positive"))
	}

	return errs
}

func validateRender(r RenderConfig) []error {
	var errs []error

	if r.MaxSentences < 1 {
		errs = append(errs, fmt.Errorf("render.max_sentences %d must be at least 1", r.MaxSentences))
	}
	if _, err := render.ParseHexColor(r.GradientLow); err != nil {
		errs = append(errs, fmt.Errorf("render.gradient_low: %w", err))
	}
	if _, err := render.ParseHexColor(r.GradientHigh); err != nil {
		errs = append(errs, fmt.Errorf("render.gradient_high: %w", err))
	}
	if r.MaxChars < 0 || r.MaxCharsPerLine < 0 {
		errs = append(errs, errors.New("render.max_chars and render.max_chars_per_line must not be negative"))
	}

	return errs
}
