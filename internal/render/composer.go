package render

import (
	"strings"
	"sync"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

// Config holds the display knobs of one caption box.
type Config struct {
	// Separator joins finalized sentences and the live tail. Defaults to
	// "\n".
	Separator string

	// MaxSentences caps the finalized-sentence ring.
	MaxSentences int

	// MaxChars truncates the rendered text from the front (oldest
	// characters drop first). 0 disables truncation.
	MaxChars int

	// MaxPerLine inserts line breaks so no line exceeds this many
	// characters. 0 disables wrapping.
	MaxPerLine int

	// ColorizeWords colors each word by its token probability.
	ColorizeWords bool

	// ColorizeSegments colors whole segments by their average log
	// probability. Ignored when ColorizeWords is set and word data exists.
	ColorizeSegments bool

	// Gradient is the low→high confidence color ramp.
	Gradient Gradient

	// RTL applies bidirectional reordering per rendered line, for target
	// languages written right-to-left.
	RTL bool
}

// Span is a run of text with an optional display color ("" means the
// surface default).
type Span struct {
	Text  string
	Color string
}

// Composer merges recognition results into the caption history. Incremental
// results replace the live tail; final results append to the sentence ring
// and clear the tail. Safe for concurrent use: the session coordinator
// writes while the UI reads.
type Composer struct {
	cfg  Config
	ring *SentenceRing

	mu   sync.RWMutex
	tail *Sentence
}

// NewComposer creates a composer with an empty history.
func NewComposer(cfg Config) *Composer {
	if cfg.Separator == "" {
		cfg.Separator = "\n"
	}
	if cfg.MaxSentences < 1 {
		cfg.MaxSentences = 5
	}
	return &Composer{
		cfg:  cfg,
		ring: NewSentenceRing(cfg.MaxSentences),
	}
}

// Ring exposes the finalized-sentence ring, for status and tests.
func (c *Composer) Ring() *SentenceRing { return c.ring }

func sentenceFrom(res asr.Result) Sentence {
	return Sentence{Text: res.Text(), Segments: res.Segments}
}

// ApplyIncremental replaces the live tail with the whole result. The ring
// is untouched: an incremental emit re-recognizes a growing buffer, so the
// new result supersedes the previous tail entirely.
func (c *Composer) ApplyIncremental(res asr.Result) {
	s := sentenceFrom(res)
	c.mu.Lock()
	c.tail = &s
	c.mu.Unlock()
}

// ApplyFinal commits the result as a finished sentence and clears the live
// tail. Empty results still clear the tail: the utterance ended, whatever
// the tail showed is superseded.
func (c *Composer) ApplyFinal(res asr.Result) {
	s := sentenceFrom(res)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tail = nil
	if s.Text == "" {
		return
	}
	c.ring.Add(s)
}

// Clear drops the whole history, for session start.
func (c *Composer) Clear() {
	c.mu.Lock()
	c.tail = nil
	c.mu.Unlock()
	c.ring.Clear()
}

// Text renders the caption: finalized sentences plus the live tail joined
// by the separator, truncated to MaxChars from the front, wrapped to
// MaxPerLine, bidi-reordered when RTL.
func (c *Composer) Text() string {
	parts := make([]string, 0, c.cfg.MaxSentences+1)
	for _, s := range c.ring.Items() {
		parts = append(parts, s.Text)
	}
	c.mu.RLock()
	if c.tail != nil && c.tail.Text != "" {
		parts = append(parts, c.tail.Text)
	}
	c.mu.RUnlock()

	text := strings.Join(parts, c.cfg.Separator)

	if c.cfg.MaxChars > 0 {
		runes := []rune(text)
		if len(runes) > c.cfg.MaxChars {
			text = string(runes[len(runes)-c.cfg.MaxChars:])
		}
	}
	if c.cfg.MaxPerLine > 0 {
		text = wrapLines(text, c.cfg.MaxPerLine)
	}
	if c.cfg.RTL {
		lines := strings.Split(text, "\n")
		for i, l := range lines {
			lines[i] = VisualOrder(l)
		}
		text = strings.Join(lines, "\n")
	}
	return text
}

// Spans renders the caption as colored runs for surfaces that support
// styling. Truncation and wrapping do not apply; styled surfaces manage
// their own layout.
func (c *Composer) Spans() []Span {
	var spans []Span
	sentences := c.ring.Items()
	c.mu.RLock()
	if c.tail != nil && c.tail.Text != "" {
		sentences = append(sentences, *c.tail)
	}
	c.mu.RUnlock()

	for i, s := range sentences {
		if i > 0 {
			spans = append(spans, Span{Text: c.cfg.Separator})
		}
		spans = append(spans, c.sentenceSpans(s)...)
	}
	return spans
}

func (c *Composer) sentenceSpans(s Sentence) []Span {
	if !c.cfg.ColorizeWords && !c.cfg.ColorizeSegments {
		return []Span{{Text: s.Text}}
	}

	var spans []Span
	for i, seg := range s.Segments {
		if i > 0 {
			spans = append(spans, Span{Text: " "})
		}
		if c.cfg.ColorizeWords && len(seg.Words) > 0 {
			for _, w := range seg.Words {
				spans = append(spans, Span{
					Text:  w.Text,
					Color: c.cfg.Gradient.At(w.Probability).Hex(),
				})
			}
			continue
		}
		if c.cfg.ColorizeSegments {
			spans = append(spans, Span{
				Text:  seg.Text,
				Color: c.cfg.Gradient.At(LogProbConfidence(seg.AvgLogProb)).Hex(),
			})
			continue
		}
		spans = append(spans, Span{Text: seg.Text})
	}
	if len(spans) == 0 && s.Text != "" {
		spans = []Span{{Text: s.Text}}
	}
	return spans
}

// wrapLines breaks each line of text so no line exceeds width runes,
// preferring to break at spaces.
func wrapLines(text string, width int) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}
	var out []string
	for len(runes) > width {
		cut := width
		// Back up to the last space inside the window, if any.
		for i := width; i > 0; i-- {
			if runes[i-1] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimRight(string(runes[:cut]), " "))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
