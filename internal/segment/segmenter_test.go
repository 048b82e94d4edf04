package segment

import (
	"testing"
	"time"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
)

const frameDur = 20 * time.Millisecond

// feed pushes count frames of 20 ms each through the segmenter starting at
// start, with the given gate verdict, collecting emissions.
func feed(s *Segmenter, start time.Duration, count int, isSpeech bool, emissions *[]*Emission) time.Duration {
	ts := start
	for i := 0; i < count; i++ {
		f := audio.Conditioned{Frame: audio.Frame{
			Data:       make([]byte, 640), // 20 ms at 16 kHz mono
			SampleRate: 16000,
			Channels:   1,
			Timestamp:  ts,
		}}
		if e := s.Process(f, isSpeech, false); e != nil {
			*emissions = append(*emissions, e)
		}
		ts += frameDur
	}
	return ts
}

func TestSilencePassthrough(t *testing.T) {
	t.Parallel()

	s := New(Config{
		TranscribeRate:  300 * time.Millisecond,
		MaxBuffer:       10 * time.Second,
		SilenceTail:     800 * time.Millisecond,
		AutoBreak:       true,
		ThresholdEnable: true,
	})

	var emissions []*Emission
	feed(s, 0, 500, false, &emissions) // 10 s of gated-out frames

	if len(emissions) != 0 {
		t.Fatalf("got %d emissions from pure silence, want 0", len(emissions))
	}
	if s.BufferDuration() != 0 {
		t.Fatal("silence must not accumulate in the buffer")
	}
}

func TestPeriodicIncremental(t *testing.T) {
	t.Parallel()

	s := New(Config{
		TranscribeRate:  300 * time.Millisecond,
		MaxBuffer:       10 * time.Second,
		SilenceTail:     800 * time.Millisecond,
		MinInputLength:  200 * time.Millisecond,
		AutoBreak:       true,
		ThresholdEnable: true,
	})

	var emissions []*Emission
	feed(s, 0, 150, true, &emissions) // 3 s of continuous speech

	if len(emissions) < 8 {
		t.Fatalf("got %d emissions over 3 s at 300 ms rate, want >= 8", len(emissions))
	}
	var prev int
	for i, e := range emissions {
		if e.Final {
			t.Fatalf("emission %d is final; periodic emits must not clear the buffer", i)
		}
		if e.Reason != ReasonPeriodic {
			t.Fatalf("emission %d reason = %s, want periodic", i, e.Reason)
		}
		if len(e.PCM) <= prev {
			t.Fatalf("emission %d snapshot (%d bytes) not larger than previous (%d); buffer was cleared", i, len(e.PCM), prev)
		}
		prev = len(e.PCM)
	}
	if s.BufferDuration() == 0 {
		t.Fatal("buffer must survive periodic emissions")
	}
}

func TestEndOfUtteranceFlush(t *testing.T) {
	t.Parallel()

	s := New(Config{
		TranscribeRate:  10 * time.Second, // out of the way
		MaxBuffer:       10 * time.Second,
		SilenceTail:     800 * time.Millisecond,
		MinInputLength:  200 * time.Millisecond,
		AutoBreak:       true,
		ThresholdEnable: true,
	})

	var emissions []*Emission
	next := feed(s, 0, 100, true, &emissions) // 2 s speech
	feed(s, next, 75, false, &emissions)      // 1.5 s silence

	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want exactly one end-of-utterance flush", len(emissions))
	}
	e := emissions[0]
	if !e.Final || e.Reason != ReasonSilenceTail {
		t.Fatalf("emission = final %v reason %s, want final silence_tail", e.Final, e.Reason)
	}
	// The flush lands within one frame of crossing the 800 ms tail.
	want := 2*time.Second + 800*time.Millisecond
	if e.End < want || e.End > want+2*frameDur {
		t.Fatalf("flush at %v, want within a frame of %v", e.End, want)
	}
	if s.BufferDuration() != 0 {
		t.Fatal("end-of-utterance must clear the buffer")
	}
}

func TestForcedFlushAtBound(t *testing.T) {
	t.Parallel()

	const maxBuffer = 2 * time.Second
	s := New(Config{
		TranscribeRate:  10 * time.Second,
		MaxBuffer:       maxBuffer,
		SilenceTail:     800 * time.Millisecond,
		MinInputLength:  200 * time.Millisecond,
		AutoBreak:       true,
		ThresholdEnable: true,
	})

	var emissions []*Emission
	feed(s, 0, 105, true, &emissions) // maxBuffer + 0.1 s of speech

	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want one forced flush", len(emissions))
	}
	e := emissions[0]
	if !e.Final || e.Reason != ReasonMaxBuffer {
		t.Fatalf("emission = final %v reason %s, want final max_buffer", e.Final, e.Reason)
	}
	if e.End > maxBuffer+frameDur {
		t.Fatalf("forced flush at %v, want at or immediately after %v", e.End, maxBuffer)
	}
	// The next buffer starts right at the bound.
	if got := s.BufferDuration(); got > 200*time.Millisecond {
		t.Fatalf("post-flush buffer already %v long", got)
	}
}

func TestBoundedBufferInvariant(t *testing.T) {
	t.Parallel()

	const maxBuffer = time.Second
	s := New(Config{
		TranscribeRate:  300 * time.Millisecond,
		MaxBuffer:       maxBuffer,
		SilenceTail:     800 * time.Millisecond,
		AutoBreak:       false, // even without auto-break the bound holds
		ThresholdEnable: true,
	})

	ts := time.Duration(0)
	for i := 0; i < 500; i++ {
		f := audio.Conditioned{Frame: audio.Frame{
			Data: make([]byte, 640), SampleRate: 16000, Channels: 1, Timestamp: ts,
		}}
		s.Process(f, true, false)
		if got := s.BufferDuration(); got > maxBuffer {
			t.Fatalf("buffer %v exceeds the %v bound after frame %d", got, maxBuffer, i)
		}
		ts += frameDur
	}
}

func TestSilenceTailWinsTieWithBound(t *testing.T) {
	t.Parallel()

	// Arrange both rules to fire on the same frame: 1.2 s speech then
	// silence until the 2 s bound and the 800 ms tail cross together.
	s := New(Config{
		TranscribeRate:  10 * time.Second,
		MaxBuffer:       2 * time.Second,
		SilenceTail:     800 * time.Millisecond,
		AutoBreak:       true,
		ThresholdEnable: true,
	})

	var emissions []*Emission
	next := feed(s, 0, 60, true, &emissions) // 1.2 s speech
	feed(s, next, 40, false, &emissions)     // 0.8 s silence

	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want 1", len(emissions))
	}
	if emissions[0].Reason != ReasonSilenceTail {
		t.Fatalf("reason = %s, want the semantic end to win the tie", emissions[0].Reason)
	}
}

func TestBusyRecognitionSkipsPeriodicOnly(t *testing.T) {
	t.Parallel()

	s := New(Config{
		TranscribeRate:  100 * time.Millisecond,
		MaxBuffer:       time.Second,
		SilenceTail:     800 * time.Millisecond,
		AutoBreak:       true,
		ThresholdEnable: true,
	})

	var emissions []*Emission
	ts := time.Duration(0)
	for i := 0; i < 60; i++ { // 1.2 s of speech, recognition permanently busy
		f := audio.Conditioned{Frame: audio.Frame{
			Data: make([]byte, 640), SampleRate: 16000, Channels: 1, Timestamp: ts,
		}}
		if e := s.Process(f, true, true); e != nil {
			emissions = append(emissions, e)
		}
		ts += frameDur
	}

	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want only the forced flush", len(emissions))
	}
	if emissions[0].Reason != ReasonMaxBuffer {
		t.Fatalf("reason = %s; busy recognition must not suppress the forced flush", emissions[0].Reason)
	}
}

func TestMinInputLengthSuppressesShortBlips(t *testing.T) {
	t.Parallel()

	s := New(Config{
		TranscribeRate:  10 * time.Second,
		MaxBuffer:       10 * time.Second,
		SilenceTail:     200 * time.Millisecond,
		MinInputLength:  time.Second,
		AutoBreak:       true,
		ThresholdEnable: true,
	})

	var emissions []*Emission
	next := feed(s, 0, 5, true, &emissions) // 100 ms blip
	feed(s, next, 20, false, &emissions)    // silence tail crosses

	if len(emissions) != 0 {
		t.Fatalf("got %d emissions from a sub-minimum blip, want 0", len(emissions))
	}
	if s.BufferDuration() != 0 {
		t.Fatal("discarded blip must not linger in the buffer")
	}
}

func TestGateBypass(t *testing.T) {
	t.Parallel()

	s := New(Config{
		TranscribeRate:  300 * time.Millisecond,
		MaxBuffer:       10 * time.Second,
		ThresholdEnable: false, // every frame is speech
	})

	var emissions []*Emission
	feed(s, 0, 50, false, &emissions) // gate says silence throughout

	if len(emissions) == 0 {
		t.Fatal("with the gate bypassed, silence frames must still emit")
	}
}

func TestFlushOnStop(t *testing.T) {
	t.Parallel()

	s := New(Config{
		TranscribeRate:  10 * time.Second,
		MaxBuffer:       10 * time.Second,
		SilenceTail:     time.Second,
		AutoBreak:       true,
		ThresholdEnable: true,
	})

	var emissions []*Emission
	next := feed(s, 0, 50, true, &emissions)

	e := s.Flush(next)
	if e == nil || !e.Final {
		t.Fatal("stop must flush the in-progress utterance as final")
	}
	if s.BufferDuration() != 0 {
		t.Fatal("flush must clear the buffer")
	}
	if s.Flush(next) != nil {
		t.Fatal("second flush of an empty buffer must be nil")
	}
}
