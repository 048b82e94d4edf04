package asr

import "time"

// Word is a single recognized word with its timing and confidence.
type Word struct {
	// Text is the word including any leading space Whisper attaches.
	Text string

	// Start and End are offsets from the beginning of the recognized audio.
	Start time.Duration
	End   time.Duration

	// Probability is the token-level confidence in [0, 1].
	Probability float64
}

// Segment is one recognized phrase.
type Segment struct {
	// ID is the zero-based index of the segment within its Result.
	ID int

	// Start and End are offsets from the beginning of the recognized audio.
	Start time.Duration
	End   time.Duration

	// Text is the recognized text, whitespace-trimmed.
	Text string

	// Words carries per-word confidence when the engine produced token
	// timestamps; nil otherwise.
	Words []Word

	// AvgLogProb is the mean log probability of the segment's tokens. Values
	// near 0 indicate a confident decode; below about -1 the text is likely
	// garbage.
	AvgLogProb float64

	// NoSpeechProb is the model's probability that the segment contains no
	// speech at all.
	NoSpeechProb float64

	// Temperature is the sampling temperature that produced this segment,
	// relevant when fallback re-decoding kicked in.
	Temperature float64

	// CompressionRatio is the gzip compression ratio of the text, a
	// repetition heuristic. Zero when the backend does not report it.
	CompressionRatio float64
}

// Result is the output of one Recognize call.
type Result struct {
	// Segments in temporal order. Empty when the audio contained no
	// recognizable speech.
	Segments []Segment

	// Language is the language the engine detected or was told to use, as a
	// Whisper language code ("en", "de", ...).
	Language string

	// AudioDuration is the duration of the audio that was processed.
	AudioDuration time.Duration

	// ProcessingTime is the wall time inference took.
	ProcessingTime time.Duration
}

// Text joins all segment texts with single spaces.
func (r Result) Text() string {
	switch len(r.Segments) {
	case 0:
		return ""
	case 1:
		return r.Segments[0].Text
	}
	n := 0
	for _, s := range r.Segments {
		n += len(s.Text) + 1
	}
	b := make([]byte, 0, n)
	for i, s := range r.Segments {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, s.Text...)
	}
	return string(b)
}
