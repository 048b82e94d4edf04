package asr

import (
	"fmt"
	"strconv"
	"strings"
)

// Preset names a bundled decoding strategy.
type Preset string

const (
	// PresetGreedy decodes with temperature 0 and no beam, the fastest
	// strategy and the default.
	PresetGreedy Preset = "greedy"
	// PresetBeamSearch decodes with a beam of 5, slower but more accurate
	// on noisy audio.
	PresetBeamSearch Preset = "beam_search"
	// PresetCustom applies the options exactly as configured.
	PresetCustom Preset = "custom"
)

// Options parameterize one Recognize call. The zero value is a usable
// greedy transcription with language auto-detection.
type Options struct {
	// Task selects transcription or built-in translation to English.
	// Empty means TaskTranscribe.
	Task Task

	// Language is the Whisper language code of the audio ("en", "ja", ...).
	// Empty lets the model auto-detect.
	Language string

	// BeamSize enables beam search when > 1. 0 or 1 means greedy.
	BeamSize int

	// Temperature is the initial sampling temperature.
	Temperature float64

	// TemperatureStep is the increment applied on fallback re-decodes when
	// the decoder fails quality thresholds. 0 disables fallback.
	TemperatureStep float64

	// InitialPrompt biases the decoder's vocabulary for the first window.
	InitialPrompt string

	// ConditionOnPreviousText feeds prior output back as context for
	// subsequent windows. Improves coherence, but a hallucination can
	// snowball; live captioning usually turns it off.
	ConditionOnPreviousText bool

	// WordTimestamps requests token-level timing, populating Segment.Words.
	WordTimestamps bool

	// EntropyThreshold aborts a decode whose output entropy indicates
	// repetition. 0 keeps the backend default.
	EntropyThreshold float64

	// MaxSegmentLength caps segment length in characters. 0 means no cap.
	MaxSegmentLength int

	// Threads bounds CPU threads for native inference. 0 means the backend
	// default.
	Threads int
}

// ForPreset returns the options for a named preset, leaving task and
// language untouched.
func (o Options) ForPreset(p Preset) Options {
	switch p {
	case PresetBeamSearch:
		o.BeamSize = 5
		o.Temperature = 0
		o.TemperatureStep = 0.2
	case PresetGreedy:
		o.BeamSize = 0
		o.Temperature = 0
		o.TemperatureStep = 0.2
	}
	return o
}

// argSetters is the whitelist of flags ParseArgString accepts. Everything
// else is rejected so a typo cannot silently change unrelated behavior.
var argSetters = map[string]func(o *Options, v string) error{
	"--beam-size": func(o *Options, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("want a non-negative integer, got %q", v)
		}
		o.BeamSize = n
		return nil
	},
	"--temperature": func(o *Options, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("want a non-negative number, got %q", v)
		}
		o.Temperature = f
		return nil
	},
	"--temperature-inc": func(o *Options, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("want a non-negative number, got %q", v)
		}
		o.TemperatureStep = f
		return nil
	},
	"--entropy-thold": func(o *Options, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("want a number, got %q", v)
		}
		o.EntropyThreshold = f
		return nil
	},
	"--max-len": func(o *Options, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("want a non-negative integer, got %q", v)
		}
		o.MaxSegmentLength = n
		return nil
	},
	"--threads": func(o *Options, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("want a non-negative integer, got %q", v)
		}
		o.Threads = n
		return nil
	},
	"--prompt": func(o *Options, v string) error {
		o.InitialPrompt = v
		return nil
	},
}

// ParseArgString applies extra whisper flags from a user-supplied string
// onto o. Only whitelisted flags are accepted; anything else returns an
// error naming the offending flag. Values may be quoted to include spaces.
func ParseArgString(o Options, args string) (Options, error) {
	fields, err := splitArgs(args)
	if err != nil {
		return o, err
	}
	for i := 0; i < len(fields); i++ {
		flag := fields[i]
		set, ok := argSetters[flag]
		if !ok {
			return o, fmt.Errorf("unsupported whisper flag %q", flag)
		}
		if i+1 >= len(fields) {
			return o, fmt.Errorf("flag %s is missing its value", flag)
		}
		i++
		if err := set(&o, fields[i]); err != nil {
			return o, fmt.Errorf("flag %s: %w", flag, err)
		}
	}
	return o, nil
}

// splitArgs splits on whitespace, honoring single and double quotes.
func splitArgs(s string) ([]string, error) {
	var (
		fields  []string
		current strings.Builder
		quote   rune
		inField bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inField = true
		case r == ' ' || r == '\t' || r == '\n':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in argument string")
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}
