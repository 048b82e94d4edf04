// Package config provides the configuration schema, loader, and file
// watcher for the speech-translate pipeline.
package config

import (
	"log/slog"

	"github.com/Dadangdut33/speech-translate/pkg/export"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr/whisper"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog converts l to the slog level, defaulting to Info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Translator selects the translation engine, or disables translation.
type Translator string

const (
	// TranslatorNone disables translation.
	TranslatorNone Translator = "none"

	// TranslatorWhisper uses the recognition model's built-in
	// translate-to-English task instead of a text engine.
	TranslatorWhisper Translator = "whisper"

	// TranslatorLibre sends text to a LibreTranslate endpoint.
	TranslatorLibre Translator = "libretranslate"

	// TranslatorMyMemory uses the MyMemory public API.
	TranslatorMyMemory Translator = "mymemory"

	// TranslatorGoogle uses the Google web translation endpoint.
	TranslatorGoogle Translator = "google"
)

// IsValid reports whether t is a recognised translator.
func (t Translator) IsValid() bool {
	switch t {
	case TranslatorNone, TranslatorWhisper, TranslatorLibre, TranslatorMyMemory, TranslatorGoogle:
		return true
	}
	return false
}

// Config is the root configuration, typically loaded from a YAML file via
// [Load] or [LoadFromReader].
type Config struct {
	LogLevel LogLevel `yaml:"log_level"`

	// Mic and Speaker configure the two capture sources. A session runs
	// with whichever sources are enabled.
	Mic     SourceConfig `yaml:"mic"`
	Speaker SourceConfig `yaml:"speaker"`

	Recognition RecognitionConfig `yaml:"recognition"`
	Translation TranslationConfig `yaml:"translation"`
	Render      RenderConfig      `yaml:"render"`
	Export      ExportConfig      `yaml:"export"`
}

// SourceConfig describes one capture source and its per-source pipeline
// settings.
type SourceConfig struct {
	// Enabled turns the source on. At least one source must be enabled to
	// start a live session.
	Enabled bool `yaml:"enabled"`

	// Device is the backend device identifier from device enumeration.
	// Empty selects the system default (for speaker capture, the default
	// playback device's loopback endpoint).
	Device string `yaml:"device"`

	Gate    GateConfig    `yaml:"gate"`
	Segment SegmentConfig `yaml:"segment"`
}

// GateConfig configures the voice-activity gate of one source.
type GateConfig struct {
	// Backend selects the detector implementation.
	Backend vad.Backend `yaml:"backend"`

	// Enabled gates frames on detected speech. When false every frame is
	// treated as speech and the buffer relies on timing rules alone.
	Enabled *bool `yaml:"enabled"`

	// Sensitivity is the detector aggressiveness, 0 (permissive) to 3
	// (aggressive).
	Sensitivity int `yaml:"sensitivity"`

	// ThresholdDB overrides the derived energy threshold in dBFS. Only
	// meaningful for the energy backend. 0 keeps the sensitivity-derived
	// value.
	ThresholdDB float64 `yaml:"threshold_db"`

	// SileroModel is the ONNX model path, required for the silero backend.
	SileroModel string `yaml:"silero_model"`
}

// GateEnabled reports whether the gate filters frames. Defaults to true.
func (g GateConfig) GateEnabled() bool {
	return g.Enabled == nil || *g.Enabled
}

// SegmentConfig holds the utterance-buffer timing rules of one source.
type SegmentConfig struct {
	// TranscribeRateMS is the minimum spacing in milliseconds between two
	// recognition requests for the same growing buffer.
	TranscribeRateMS int `yaml:"transcribe_rate_ms"`

	// MaxBufferS is the hard buffer bound in seconds; reaching it forces a
	// flush.
	MaxBufferS float64 `yaml:"max_buffer_s"`

	// SilenceTailMS is how long the gate must stay silent before the
	// buffer is treated as a finished utterance.
	SilenceTailMS int `yaml:"silence_tail_ms"`

	// MinInputLengthS suppresses emissions of buffers shorter than this.
	MinInputLengthS float64 `yaml:"min_input_length_s"`

	// AutoBreak clears the buffer on end-of-utterance flushes. When false
	// the buffer keeps growing until MaxBufferS.
	AutoBreak *bool `yaml:"auto_break"`
}

// AutoBreakEnabled reports whether utterance flushes clear the buffer.
// Defaults to true.
func (s SegmentConfig) AutoBreakEnabled() bool {
	return s.AutoBreak == nil || *s.AutoBreak
}

// RecognitionConfig selects and parameterizes the Whisper engine.
type RecognitionConfig struct {
	// Backend is "native" (in-process CGO) or "server" (whisper-server
	// HTTP).
	Backend whisper.Backend `yaml:"backend"`

	// Model is the ggml model file path, required for the native backend.
	Model string `yaml:"model"`

	// ServerURL is the whisper-server base URL, required for the server
	// backend.
	ServerURL string `yaml:"server_url"`

	// Language is the spoken language code, or "auto" / empty for
	// detection.
	Language string `yaml:"language"`

	// Preset selects the decoding strategy. For "custom" the fields below
	// apply as-is; otherwise the preset overrides them.
	Preset asr.Preset `yaml:"preset"`

	BeamSize                int     `yaml:"beam_size"`
	Temperature             float64 `yaml:"temperature"`
	TemperatureStep         float64 `yaml:"temperature_step"`
	InitialPrompt           string  `yaml:"initial_prompt"`
	ConditionOnPreviousText bool    `yaml:"condition_on_previous_text"`
	WordTimestamps          bool    `yaml:"word_timestamps"`
	EntropyThreshold        float64 `yaml:"entropy_threshold"`
	MaxSegmentLength        int     `yaml:"max_segment_length"`
	Threads                 int     `yaml:"threads"`

	// WhisperArgs is a free-form "--flag value" string applied on top of
	// the preset. Flags outside the supported set are rejected at load.
	WhisperArgs string `yaml:"whisper_args"`
}

// EngineConfig returns the whisper backend selection for this config.
func (r RecognitionConfig) EngineConfig() whisper.Config {
	return whisper.Config{
		Backend:   r.Backend,
		ModelPath: r.Model,
		ServerURL: r.ServerURL,
	}
}

// Options builds the decoding options: custom fields, the preset override,
// then the WhisperArgs string on top.
func (r RecognitionConfig) Options() (asr.Options, error) {
	o := asr.Options{
		Language:                r.Language,
		BeamSize:                r.BeamSize,
		Temperature:             r.Temperature,
		TemperatureStep:         r.TemperatureStep,
		InitialPrompt:           r.InitialPrompt,
		ConditionOnPreviousText: r.ConditionOnPreviousText,
		WordTimestamps:          r.WordTimestamps,
		EntropyThreshold:        r.EntropyThreshold,
		MaxSegmentLength:        r.MaxSegmentLength,
		Threads:                 r.Threads,
	}
	if r.Language == "auto" {
		o.Language = ""
	}
	if r.Preset != "" && r.Preset != asr.PresetCustom {
		o = o.ForPreset(r.Preset)
	}
	if r.WhisperArgs != "" {
		return asr.ParseArgString(o, r.WhisperArgs)
	}
	return o, nil
}

// TranslationConfig selects the translation engine and its parameters.
type TranslationConfig struct {
	Engine Translator `yaml:"engine"`

	// Source is the source language code, or "auto". MyMemory does not
	// accept "auto".
	Source string `yaml:"source"`

	// Target is the target language code. Ignored for the whisper engine,
	// whose target is always English.
	Target string `yaml:"target"`

	// LibreEndpoint is the LibreTranslate base URL.
	LibreEndpoint string `yaml:"libre_endpoint"`

	// LibreAPIKey authenticates against LibreTranslate instances that
	// require one.
	LibreAPIKey string `yaml:"libre_api_key"`

	// MyMemoryEmail raises the MyMemory daily quota when set.
	MyMemoryEmail string `yaml:"mymemory_email"`

	// Proxies lists HTTP/HTTPS proxy URLs. Each request picks one at
	// random.
	Proxies []string `yaml:"proxies"`

	// TimeoutS is the per-request HTTP timeout in seconds.
	TimeoutS int `yaml:"timeout_s"`
}

// RenderConfig holds the caption display settings.
type RenderConfig struct {
	// Separator joins finished sentences and the live tail.
	Separator string `yaml:"separator"`

	// MaxSentences bounds the finished-sentence history.
	MaxSentences int `yaml:"max_sentences"`

	// MaxChars truncates the rendered text from the front. 0 disables.
	MaxChars int `yaml:"max_chars"`

	// MaxCharsPerLine wraps rendered lines. 0 disables.
	MaxCharsPerLine int `yaml:"max_chars_per_line"`

	// ColorizeWords colors each word by its recognition probability.
	ColorizeWords bool `yaml:"colorize_words"`

	// ColorizeSegments colors whole segments by average log probability.
	ColorizeSegments bool `yaml:"colorize_segments"`

	// GradientLow and GradientHigh are the hex endpoint colors of the
	// confidence gradient.
	GradientLow  string `yaml:"gradient_low"`
	GradientHigh string `yaml:"gradient_high"`
}

// ExportConfig controls where and how batch results are written.
type ExportConfig struct {
	// Dir is the output directory. Empty writes next to each input file.
	Dir string `yaml:"dir"`

	// Formats lists the output formats.
	Formats []export.Format `yaml:"formats"`

	// SegmentLevel writes one cue per segment.
	SegmentLevel *bool `yaml:"segment_level"`

	// WordLevel additionally writes word-per-cue files.
	WordLevel bool `yaml:"word_level"`
}

// SegmentLevelEnabled defaults to true.
func (e ExportConfig) SegmentLevelEnabled() bool {
	return e.SegmentLevel == nil || *e.SegmentLevel
}

// Default returns the configuration used when a field is absent from the
// file. Loading decodes on top of it, so file values override.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Mic: SourceConfig{
			Enabled: true,
			Gate:    GateConfig{Backend: vad.BackendEnergy, Sensitivity: 1},
			Segment: defaultSegment(),
		},
		Speaker: SourceConfig{
			Gate:    GateConfig{Backend: vad.BackendEnergy, Sensitivity: 1},
			Segment: defaultSegment(),
		},
		Recognition: RecognitionConfig{
			Backend:  whisper.BackendNative,
			Language: "auto",
			Preset:   asr.PresetGreedy,
		},
		Translation: TranslationConfig{
			Engine:   TranslatorNone,
			Source:   "auto",
			Target:   "en",
			TimeoutS: 15,
		},
		Render: RenderConfig{
			Separator:    "\n",
			MaxSentences: 5,
			GradientLow:  "#f44336",
			GradientHigh: "#4caf50",
		},
		Export: ExportConfig{
			Formats: []export.Format{export.FormatTxt, export.FormatSRT},
		},
	}
}

func defaultSegment() SegmentConfig {
	return SegmentConfig{
		TranscribeRateMS: 300,
		MaxBufferS:       10,
		SilenceTailMS:    800,
		MinInputLengthS:  0.4,
	}
}
