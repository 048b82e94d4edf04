// Package translate defines the Engine interface for text translation
// backends and the free web engines that implement it.
//
// Engines translate batches of texts in one round trip. Callers that hold
// recognized segments should go through [Segments], which packs segment
// texts into as few requests as the engine's payload limit allows and falls
// back to per-segment requests when a provider mangles the batch.
//
// Implementations must be safe for concurrent use.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

// ErrUnsupportedLanguage is returned when an engine does not serve the
// requested language pair.
var ErrUnsupportedLanguage = errors.New("translate: unsupported language")

// maxBatchChars bounds the joined text size of one batched request. The
// free web endpoints start truncating or erroring near 5000 characters.
const maxBatchChars = 5000

// Engine is the abstraction over any translation backend.
type Engine interface {
	// Name identifies the engine in logs and error events.
	Name() string

	// Translate converts texts from source to target, returning one output
	// per input in order. Source may be empty or "auto" where the engine
	// supports detection. Inputs are joined into a single request, so the
	// combined length must stay under the engine's payload limit; use
	// [Segments] for arbitrary batches.
	Translate(ctx context.Context, texts []string, source, target string) ([]string, error)

	// Supports reports whether the engine can translate into the given
	// language code.
	Supports(lang string) bool
}

// Segments translates the texts of segs, packing them into as few engine
// calls as the payload limit allows. The returned slice is parallel to
// segs. When a batch comes back with the wrong line count the affected
// segments are retried one by one, so a single mangled response cannot
// shift every following caption.
func Segments(ctx context.Context, e Engine, segs []asr.Segment, source, target string) ([]string, error) {
	if len(segs) == 0 {
		return nil, nil
	}
	if !e.Supports(target) {
		return nil, fmt.Errorf("%w: %s does not translate into %q", ErrUnsupportedLanguage, e.Name(), target)
	}

	out := make([]string, len(segs))
	start := 0
	for start < len(segs) {
		end := start + 1
		size := len(segs[start].Text)
		for end < len(segs) && size+1+len(segs[end].Text) <= maxBatchChars {
			size += 1 + len(segs[end].Text)
			end++
		}

		texts := make([]string, 0, end-start)
		for _, s := range segs[start:end] {
			texts = append(texts, s.Text)
		}

		translated, err := e.Translate(ctx, texts, source, target)
		if err != nil {
			return nil, err
		}
		if len(translated) == len(texts) {
			copy(out[start:end], translated)
		} else {
			// Provider collapsed or split lines; retry individually.
			for i, text := range texts {
				single, err := e.Translate(ctx, []string{text}, source, target)
				if err != nil {
					return nil, err
				}
				out[start+i] = strings.Join(single, " ")
			}
		}
		start = end
	}
	return out, nil
}

// joinBatch joins texts with newlines for engines whose API takes a single
// string, and splitBatch undoes it on the response.
func joinBatch(texts []string) string {
	return strings.Join(texts, "\n")
}

func splitBatch(joined string, want int) []string {
	lines := strings.Split(joined, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.TrimSpace(l))
	}
	if len(out) != want {
		return out // caller detects the mismatch
	}
	return out
}
