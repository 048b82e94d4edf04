package render

import (
	"strings"
	"testing"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

func result(texts ...string) asr.Result {
	segs := make([]asr.Segment, len(texts))
	for i, t := range texts {
		segs[i] = asr.Segment{ID: i, Text: t}
	}
	return asr.Result{Segments: segs}
}

func TestComposerIncrementalReplacesTail(t *testing.T) {
	t.Parallel()

	c := NewComposer(Config{Separator: "\n", MaxSentences: 3})

	c.ApplyIncremental(result("hello"))
	c.ApplyIncremental(result("hello world"))

	if got, want := c.Text(), "hello world"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	if got := c.Ring().Len(); got != 0 {
		t.Fatalf("ring length = %d, want 0 before any final result", got)
	}
}

func TestComposerFinalAppendsAndClearsTail(t *testing.T) {
	t.Parallel()

	c := NewComposer(Config{Separator: "\n", MaxSentences: 3})

	c.ApplyIncremental(result("first sent"))
	c.ApplyFinal(result("first sentence"))
	c.ApplyIncremental(result("second"))

	if got, want := c.Text(), "first sentence\nsecond"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	if got := c.Ring().Len(); got != 1 {
		t.Fatalf("ring length = %d, want 1", got)
	}
}

func TestComposerEmptyFinalClearsTail(t *testing.T) {
	t.Parallel()

	c := NewComposer(Config{Separator: "\n", MaxSentences: 3})

	c.ApplyIncremental(result("partial"))
	c.ApplyFinal(asr.Result{})

	if got := c.Text(); got != "" {
		t.Fatalf("Text() = %q, want empty after empty final result", got)
	}
	if got := c.Ring().Len(); got != 0 {
		t.Fatalf("ring length = %d, want 0", got)
	}
}

func TestComposerRingEviction(t *testing.T) {
	t.Parallel()

	c := NewComposer(Config{Separator: " | ", MaxSentences: 2})
	for _, s := range []string{"one", "two", "three"} {
		c.ApplyFinal(result(s))
	}

	if got, want := c.Text(), "two | three"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestComposerTruncatesOldestChars(t *testing.T) {
	t.Parallel()

	c := NewComposer(Config{Separator: "\n", MaxSentences: 5, MaxChars: 10})
	c.ApplyFinal(result("abcdefghij"))
	c.ApplyFinal(result("klmno"))

	got := c.Text()
	if len([]rune(got)) != 10 {
		t.Fatalf("Text() length = %d, want 10: %q", len([]rune(got)), got)
	}
	if !strings.HasSuffix(got, "klmno") {
		t.Fatalf("Text() = %q, want the newest text kept", got)
	}
}

func TestComposerWrapsLines(t *testing.T) {
	t.Parallel()

	c := NewComposer(Config{Separator: "\n", MaxSentences: 5, MaxPerLine: 10})
	c.ApplyFinal(result("the quick brown fox"))

	for _, line := range strings.Split(c.Text(), "\n") {
		if n := len([]rune(line)); n > 10 {
			t.Fatalf("line %q has %d chars, want at most 10", line, n)
		}
	}
}

func TestComposerClear(t *testing.T) {
	t.Parallel()

	c := NewComposer(Config{Separator: "\n", MaxSentences: 3})
	c.ApplyFinal(result("done"))
	c.ApplyIncremental(result("live"))
	c.Clear()

	if got := c.Text(); got != "" {
		t.Fatalf("Text() after Clear = %q, want empty", got)
	}
}

func TestComposerSpansWordColors(t *testing.T) {
	t.Parallel()

	g := Gradient{Low: RGB{R: 255}, High: RGB{G: 255}}
	c := NewComposer(Config{
		Separator:     "\n",
		MaxSentences:  3,
		ColorizeWords: true,
		Gradient:      g,
	})

	c.ApplyFinal(asr.Result{Segments: []asr.Segment{{
		Text: "hi there",
		Words: []asr.Word{
			{Text: "hi ", Probability: 1},
			{Text: "there", Probability: 0},
		},
	}}})

	spans := c.Spans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(spans), spans)
	}
	if got, want := spans[0].Color, g.High.Hex(); got != want {
		t.Fatalf("high-confidence word color = %q, want %q", got, want)
	}
	if got, want := spans[1].Color, g.Low.Hex(); got != want {
		t.Fatalf("low-confidence word color = %q, want %q", got, want)
	}
}

func TestComposerSpansSegmentColors(t *testing.T) {
	t.Parallel()

	g := Gradient{Low: RGB{R: 255}, High: RGB{G: 255}}
	c := NewComposer(Config{
		Separator:        "\n",
		MaxSentences:     3,
		ColorizeSegments: true,
		Gradient:         g,
	})

	c.ApplyFinal(asr.Result{Segments: []asr.Segment{
		{Text: "sure thing", AvgLogProb: 0},
	}})

	spans := c.Spans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(spans), spans)
	}
	if got, want := spans[0].Color, g.High.Hex(); got != want {
		t.Fatalf("segment color = %q, want %q", got, want)
	}
}

func TestComposerSpansPlain(t *testing.T) {
	t.Parallel()

	c := NewComposer(Config{Separator: "\n", MaxSentences: 3})
	c.ApplyFinal(result("plain"))

	spans := c.Spans()
	if len(spans) != 1 || spans[0].Color != "" {
		t.Fatalf("spans = %+v, want one uncolored span", spans)
	}
}

func TestVisualOrderLatinUnchanged(t *testing.T) {
	t.Parallel()

	if got, want := VisualOrder("hello world"), "hello world"; got != want {
		t.Fatalf("VisualOrder = %q, want %q", got, want)
	}
}
