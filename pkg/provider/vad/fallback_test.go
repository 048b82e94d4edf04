package vad_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad/mock"
)

func TestWithFallbackDegradesOnError(t *testing.T) {
	t.Parallel()

	primary := &mock.Gate{IsSpeechErr: errors.New("model failure")}
	fallback := &mock.Gate{Default: true}
	g := vad.WithFallback(primary, fallback, slog.New(slog.DiscardHandler))

	frame := audio.Conditioned{DBFS: -20}
	for i := 0; i < 3; i++ {
		got, err := g.IsSpeech(frame)
		if err != nil {
			t.Fatalf("IsSpeech call %d: %v", i, err)
		}
		if !got {
			t.Fatalf("IsSpeech call %d = false, want fallback decision true", i)
		}
	}

	// After the first failure the primary is no longer consulted.
	if got := len(primary.Frames); got != 1 {
		t.Fatalf("primary consulted %d times, want 1", got)
	}
	if got := len(fallback.Frames); got != 3 {
		t.Fatalf("fallback consulted %d times, want 3", got)
	}
}

func TestWithFallbackPrefersPrimary(t *testing.T) {
	t.Parallel()

	primary := &mock.Gate{Default: true}
	fallback := &mock.Gate{Default: false}
	g := vad.WithFallback(primary, fallback, slog.New(slog.DiscardHandler))

	got, err := g.IsSpeech(audio.Conditioned{})
	if err != nil {
		t.Fatalf("IsSpeech: %v", err)
	}
	if !got {
		t.Fatal("healthy primary decision should win")
	}
	if len(fallback.Frames) != 0 {
		t.Fatal("fallback should not run while primary is healthy")
	}
}

func TestWithFallbackResetRestoresPrimary(t *testing.T) {
	t.Parallel()

	primary := &mock.Gate{IsSpeechErr: errors.New("transient")}
	fallback := &mock.Gate{}
	g := vad.WithFallback(primary, fallback, slog.New(slog.DiscardHandler))

	if _, err := g.IsSpeech(audio.Conditioned{}); err != nil {
		t.Fatalf("IsSpeech: %v", err)
	}

	primary.IsSpeechErr = nil
	primary.Default = true
	g.Reset()

	got, err := g.IsSpeech(audio.Conditioned{})
	if err != nil {
		t.Fatalf("IsSpeech after reset: %v", err)
	}
	if !got {
		t.Fatal("primary should be consulted again after Reset")
	}
	if primary.ResetCallCount != 1 || fallback.ResetCallCount != 1 {
		t.Fatalf("Reset not propagated: primary %d, fallback %d", primary.ResetCallCount, fallback.ResetCallCount)
	}
}
