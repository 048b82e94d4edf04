package translate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
	"github.com/Dadangdut33/speech-translate/pkg/provider/translate"
	"github.com/Dadangdut33/speech-translate/pkg/provider/translate/mock"
)

func segments(texts ...string) []asr.Segment {
	out := make([]asr.Segment, len(texts))
	for i, t := range texts {
		out[i] = asr.Segment{ID: i, Text: t}
	}
	return out
}

func TestSegmentsBatchesIntoOneCall(t *testing.T) {
	t.Parallel()

	eng := &mock.Engine{}
	got, err := translate.Segments(context.Background(), eng, segments("hello", "world", "again"), "en", "de")
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(eng.TranslateCalls) != 1 {
		t.Fatalf("engine called %d times, want 1 batched call", len(eng.TranslateCalls))
	}
	want := []string{"tr:hello", "tr:world", "tr:again"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSegmentsSplitsOversizedBatch(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("a", 3000)
	eng := &mock.Engine{}
	_, err := translate.Segments(context.Background(), eng, segments(big, big, big), "en", "fr")
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(eng.TranslateCalls) < 2 {
		t.Fatalf("engine called %d times, want the batch split by the size cap", len(eng.TranslateCalls))
	}
	for _, call := range eng.TranslateCalls {
		total := 0
		for _, text := range call.Texts {
			total += len(text) + 1
		}
		if total > 5001 {
			t.Fatalf("batch of %d chars exceeds the payload cap", total)
		}
	}
}

func TestSegmentsFallsBackPerSegment(t *testing.T) {
	t.Parallel()

	eng := &mock.Engine{}
	eng.TranslateFn = func(_ context.Context, texts []string, _, _ string) ([]string, error) {
		if len(texts) > 1 {
			// Provider collapsed the newline-joined batch into one line.
			return []string{"mangled"}, nil
		}
		return []string{"one:" + texts[0]}, nil
	}

	got, err := translate.Segments(context.Background(), eng, segments("a", "b"), "en", "de")
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if got[0] != "one:a" || got[1] != "one:b" {
		t.Fatalf("got %v, want per-segment retries", got)
	}
}

func TestSegmentsUnsupportedTarget(t *testing.T) {
	t.Parallel()

	eng := &mock.Engine{Unsupported: []string{"xx"}}
	_, err := translate.Segments(context.Background(), eng, segments("hi"), "en", "xx")
	if !errors.Is(err, translate.ErrUnsupportedLanguage) {
		t.Fatalf("error = %v, want ErrUnsupportedLanguage", err)
	}
	if len(eng.TranslateCalls) != 0 {
		t.Fatal("engine must not be called for an unsupported target")
	}
}

func TestSegmentsEmpty(t *testing.T) {
	t.Parallel()

	got, err := translate.Segments(context.Background(), &mock.Engine{}, nil, "en", "de")
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if got != nil {
		t.Fatalf("got %v, want nil for empty input", got)
	}
}

func TestIsRTL(t *testing.T) {
	t.Parallel()

	if !translate.IsRTL("ar") || !translate.IsRTL("he") {
		t.Fatal("arabic and hebrew are right-to-left")
	}
	if translate.IsRTL("en") {
		t.Fatal("english is not right-to-left")
	}
}
