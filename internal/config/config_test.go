package config_test

import (
	"strings"
	"testing"

	"github.com/Dadangdut33/speech-translate/internal/config"
	"github.com/Dadangdut33/speech-translate/pkg/export"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr/whisper"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

const validYAML = `
log_level: debug
mic:
  enabled: true
  gate:
    backend: webrtc
    sensitivity: 2
  segment:
    transcribe_rate_ms: 500
    max_buffer_s: 8
    silence_tail_ms: 600
    min_input_length_s: 0.5
speaker:
  enabled: true
  device: "monitor-1"
recognition:
  backend: native
  model: /models/ggml-base.bin
  language: auto
  preset: beam_search
translation:
  engine: libretranslate
  target: de
  libre_endpoint: http://localhost:5000
render:
  separator: " "
  max_sentences: 3
  colorize_words: true
export:
  formats: [txt, srt, json]
  word_level: true
`

func TestLoadFromReaderValid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != config.LogDebug {
		t.Errorf("log_level: got %q, want %q", cfg.LogLevel, config.LogDebug)
	}
	if cfg.Mic.Gate.Backend != vad.BackendWebRTC {
		t.Errorf("mic gate backend: got %q, want %q", cfg.Mic.Gate.Backend, vad.BackendWebRTC)
	}
	if cfg.Mic.Segment.TranscribeRateMS != 500 {
		t.Errorf("transcribe_rate_ms: got %d, want 500", cfg.Mic.Segment.TranscribeRateMS)
	}
	if cfg.Speaker.Device != "monitor-1" {
		t.Errorf("speaker device: got %q", cfg.Speaker.Device)
	}
	if cfg.Recognition.Backend != whisper.BackendNative {
		t.Errorf("recognition backend: got %q", cfg.Recognition.Backend)
	}
	if cfg.Translation.Engine != config.TranslatorLibre {
		t.Errorf("translation engine: got %q", cfg.Translation.Engine)
	}
	if len(cfg.Export.Formats) != 3 || cfg.Export.Formats[2] != export.FormatJSON {
		t.Errorf("export formats: got %v", cfg.Export.Formats)
	}
}

func TestLoadFromReaderAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(`
recognition:
  backend: server
  server_url: http://localhost:8080
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != config.LogInfo {
		t.Errorf("default log_level: got %q, want info", cfg.LogLevel)
	}
	if !cfg.Mic.Enabled {
		t.Error("mic should be enabled by default")
	}
	if cfg.Speaker.Enabled {
		t.Error("speaker should be disabled by default")
	}
	if got := cfg.Mic.Segment.SilenceTailMS; got != 800 {
		t.Errorf("default silence_tail_ms: got %d, want 800", got)
	}
	if !cfg.Mic.Gate.GateEnabled() {
		t.Error("gate should be enabled by default")
	}
	if !cfg.Mic.Segment.AutoBreakEnabled() {
		t.Error("auto_break should be enabled by default")
	}
	if cfg.Translation.Engine != config.TranslatorNone {
		t.Errorf("default translation engine: got %q, want none", cfg.Translation.Engine)
	}
	if !cfg.Export.SegmentLevelEnabled() {
		t.Error("segment_level should be enabled by default")
	}
}

func TestLoadFromReaderRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
recognition:
  backend: native
  model: /m.bin
  bogus_knob: 1
`))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidateFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantSub string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *config.Config) { c.LogLevel = "verbose" },
			wantSub: "log_level",
		},
		{
			name:    "bad gate backend",
			mutate:  func(c *config.Config) { c.Mic.Gate.Backend = "spectral" },
			wantSub: "mic.gate.backend",
		},
		{
			name:    "sensitivity out of range",
			mutate:  func(c *config.Config) { c.Speaker.Gate.Sensitivity = 7 },
			wantSub: "speaker.gate.sensitivity",
		},
		{
			name:    "silero without model",
			mutate:  func(c *config.Config) { c.Mic.Gate.Backend = vad.BackendSilero },
			wantSub: "silero_model",
		},
		{
			name:    "native without model",
			mutate:  func(c *config.Config) { c.Recognition.Model = "" },
			wantSub: "recognition.model",
		},
		{
			name: "server without url",
			mutate: func(c *config.Config) {
				c.Recognition.Backend = whisper.BackendServer
				c.Recognition.ServerURL = ""
			},
			wantSub: "recognition.server_url",
		},
		{
			name:    "bad preset",
			mutate:  func(c *config.Config) { c.Recognition.Preset = "fastest" },
			wantSub: "recognition.preset",
		},
		{
			name:    "bad whisper args",
			mutate:  func(c *config.Config) { c.Recognition.WhisperArgs = "--frobnicate 3" },
			wantSub: "whisper_args",
		},
		{
			name: "libre without endpoint",
			mutate: func(c *config.Config) {
				c.Translation.Engine = config.TranslatorLibre
				c.Translation.Target = "de"
			},
			wantSub: "libre_endpoint",
		},
		{
			name: "mymemory with auto source",
			mutate: func(c *config.Config) {
				c.Translation.Engine = config.TranslatorMyMemory
				c.Translation.Source = "auto"
			},
			wantSub: "mymemory",
		},
		{
			name:    "bad proxy url",
			mutate:  func(c *config.Config) { c.Translation.Proxies = []string{"not a proxy"} },
			wantSub: "translation.proxies[0]",
		},
		{
			name:    "bad gradient",
			mutate:  func(c *config.Config) { c.Render.GradientLow = "red" },
			wantSub: "gradient_low",
		},
		{
			name:    "bad export format",
			mutate:  func(c *config.Config) { c.Export.Formats = []export.Format{"docx"} },
			wantSub: "export.formats[0]",
		},
		{
			name:    "zero transcribe rate",
			mutate:  func(c *config.Config) { c.Mic.Segment.TranscribeRateMS = 0 },
			wantSub: "transcribe_rate_ms",
		},
		{
			name: "min input exceeds buffer",
			mutate: func(c *config.Config) {
				c.Mic.Segment.MaxBufferS = 2
				c.Mic.Segment.MinInputLengthS = 5
			},
			wantSub: "min_input_length_s",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			cfg.Recognition.Model = "/models/ggml-base.bin"
			tc.mutate(cfg)

			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Recognition.Model = "/models/ggml-base.bin"
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
}

func TestRecognitionOptions(t *testing.T) {
	t.Parallel()

	t.Run("auto language cleared", func(t *testing.T) {
		t.Parallel()

		rec := config.Default().Recognition
		rec.Language = "auto"
		o, err := rec.Options()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Language != "" {
			t.Errorf("language: got %q, want empty for auto-detect", o.Language)
		}
	})

	t.Run("preset overrides custom fields", func(t *testing.T) {
		t.Parallel()

		rec := config.Default().Recognition
		rec.Preset = asr.PresetBeamSearch
		rec.BeamSize = 1
		o, err := rec.Options()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.BeamSize != 5 {
			t.Errorf("beam size: got %d, want preset value 5", o.BeamSize)
		}
	})

	t.Run("custom preset keeps fields", func(t *testing.T) {
		t.Parallel()

		rec := config.Default().Recognition
		rec.Preset = asr.PresetCustom
		rec.BeamSize = 2
		rec.Temperature = 0.4
		o, err := rec.Options()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.BeamSize != 2 || o.Temperature != 0.4 {
			t.Errorf("custom options not kept: %+v", o)
		}
	})

	t.Run("whisper args applied on top", func(t *testing.T) {
		t.Parallel()

		rec := config.Default().Recognition
		rec.WhisperArgs = "--beam-size 7 --threads 4"
		o, err := rec.Options()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.BeamSize != 7 || o.Threads != 4 {
			t.Errorf("args not applied: %+v", o)
		}
	})
}
