package render

import "testing"

func TestSentenceRingEviction(t *testing.T) {
	t.Parallel()

	r := NewSentenceRing(3)
	for _, txt := range []string{"one", "two", "three", "four"} {
		r.Add(Sentence{Text: txt})
	}

	if got := r.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	items := r.Items()
	want := []string{"two", "three", "four"}
	for i, s := range items {
		if s.Text != want[i] {
			t.Fatalf("Items()[%d].Text = %q, want %q", i, s.Text, want[i])
		}
	}
}

func TestSentenceRingItemsIsCopy(t *testing.T) {
	t.Parallel()

	r := NewSentenceRing(2)
	r.Add(Sentence{Text: "a"})

	items := r.Items()
	items[0].Text = "mutated"

	if got := r.Items()[0].Text; got != "a" {
		t.Fatalf("ring content changed through returned slice: got %q", got)
	}
}

func TestSentenceRingClear(t *testing.T) {
	t.Parallel()

	r := NewSentenceRing(2)
	r.Add(Sentence{Text: "a"})
	r.Add(Sentence{Text: "b"})
	r.Clear()

	if got := r.Len(); got != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", got)
	}
	r.Add(Sentence{Text: "c"})
	if got := r.Items()[0].Text; got != "c" {
		t.Fatalf("Add after Clear: got %q, want %q", got, "c")
	}
}
