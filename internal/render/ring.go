// Package render composes recognition results into the UI-facing caption
// text: a bounded ring of finalized sentences plus the live utterance
// tail, joined, truncated, optionally colored by confidence and reordered
// for right-to-left scripts.
package render

import (
	"sync"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

// Sentence is one finalized utterance kept for display.
type Sentence struct {
	// Text is the display text, already separator-free.
	Text string

	// Segments carries the recognition segments behind the text, used for
	// confidence coloring.
	Segments []asr.Segment
}

// SentenceRing retains the most recent finalized sentences up to a fixed
// capacity, evicting the oldest on overflow.
//
// All methods are safe for concurrent use.
type SentenceRing struct {
	mu      sync.RWMutex
	entries []Sentence
	maxSize int
}

// NewSentenceRing creates a ring that retains at most maxSize sentences.
// Sizes below 1 are raised to 1.
func NewSentenceRing(maxSize int) *SentenceRing {
	if maxSize < 1 {
		maxSize = 1
	}
	return &SentenceRing{
		entries: make([]Sentence, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends a sentence, evicting the oldest entries beyond capacity.
func (r *SentenceRing) Add(s Sentence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, s)
	if len(r.entries) > r.maxSize {
		keep := r.entries[len(r.entries)-r.maxSize:]
		// Fresh backing array so evicted entries do not pin memory.
		fresh := make([]Sentence, len(keep), r.maxSize)
		copy(fresh, keep)
		r.entries = fresh
	}
}

// Items returns the retained sentences in chronological order.
func (r *SentenceRing) Items() []Sentence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Sentence, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of retained sentences.
func (r *SentenceRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear empties the ring.
func (r *SentenceRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
}
