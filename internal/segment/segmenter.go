// Package segment turns the gated live audio stream into recognition
// requests. The Segmenter owns the rolling utterance buffer and decides per
// frame whether to append, flush, or drop, based on three clocks: the
// periodic emit rate, the hard buffer bound, and the silence tail that
// marks end-of-utterance.
package segment

import (
	"time"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
)

// Reason records which rule produced an emission.
type Reason string

const (
	// ReasonPeriodic is the incremental re-recognition emit; the buffer
	// keeps growing afterwards.
	ReasonPeriodic Reason = "periodic"
	// ReasonMaxBuffer is the forced flush at the buffer duration bound.
	ReasonMaxBuffer Reason = "max_buffer"
	// ReasonSilenceTail is the end-of-utterance flush after sustained
	// non-speech.
	ReasonSilenceTail Reason = "silence_tail"
)

// Emission is one recognition request. PCM is a copy of the live buffer;
// the recognition worker never sees the buffer the Segmenter keeps
// mutating.
type Emission struct {
	PCM    []byte
	Start  time.Duration
	End    time.Duration
	Reason Reason

	// Final marks a flush that cleared the buffer: the recognition result
	// finalizes the current utterance instead of replacing the live tail.
	Final bool
}

// Duration is the audio length of the snapshot.
func (e Emission) Duration() time.Duration { return e.End - e.Start }

// Config enumerates the segmentation knobs.
type Config struct {
	// TranscribeRate is the minimum distance between two periodic emits of
	// the same growing buffer.
	TranscribeRate time.Duration

	// MaxBuffer is the hard bound on buffered audio before a forced flush.
	MaxBuffer time.Duration

	// SilenceTail flushes the utterance once this much consecutive
	// non-speech follows speech.
	SilenceTail time.Duration

	// MinInputLength suppresses emissions of buffers shorter than this.
	MinInputLength time.Duration

	// AutoBreak clears the buffer on a silence-tail flush. When false the
	// buffer keeps growing until MaxBuffer forces a flush.
	AutoBreak bool

	// ThresholdEnable applies the voice gate. When false every frame
	// counts as speech.
	ThresholdEnable bool
}

// Segmenter is the per-source segmentation state machine. It is confined
// to the goroutine draining that source's capture queue and keeps no time
// of its own: all clocks derive from frame timestamps, which makes the
// machine deterministic under test.
type Segmenter struct {
	cfg Config

	buf        []byte
	bufStart   time.Duration
	hasBuf     bool
	hadSpeech  bool
	lastSpeech time.Duration
	lastFlush  time.Duration
}

// New returns a segmenter with an empty buffer.
func New(cfg Config) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// BufferDuration reports the audio currently buffered, for status display.
func (s *Segmenter) BufferDuration() time.Duration {
	if !s.hasBuf {
		return 0
	}
	return time.Duration(len(s.buf)/2) * time.Second / audio.RecognitionRate
}

// Reset drops the live buffer and all clocks, for pause/resume.
func (s *Segmenter) Reset() {
	s.buf = nil
	s.hasBuf = false
	s.hadSpeech = false
	s.lastSpeech = 0
	s.lastFlush = 0
	s.bufStart = 0
}

// Process feeds one conditioned frame through the state machine and
// returns an emission when a flush rule fired, nil otherwise. isSpeech is
// the gate's verdict for this frame. recognitionBusy suppresses the
// periodic rule only: a periodic emit that cannot start is retried on the
// next frame, while forced and end-of-utterance flushes always emit.
func (s *Segmenter) Process(f audio.Conditioned, isSpeech, recognitionBusy bool) *Emission {
	if !s.cfg.ThresholdEnable {
		isSpeech = true
	}

	now := f.End()

	// Leading non-speech never starts a buffer.
	if !isSpeech && !s.hasBuf {
		return nil
	}

	if !s.hasBuf {
		s.bufStart = f.Timestamp
		s.hasBuf = true
		s.lastFlush = f.Timestamp
	}
	s.buf = append(s.buf, f.Data...)
	if isSpeech {
		s.hadSpeech = true
		s.lastSpeech = now
	}

	bufDuration := now - s.bufStart

	// End-of-utterance beats the size bound when both fire on one frame.
	if s.hadSpeech && !isSpeech && s.cfg.SilenceTail > 0 && now-s.lastSpeech >= s.cfg.SilenceTail {
		// The buffer bound holds even when AutoBreak keeps the tail.
		clear := s.cfg.AutoBreak || bufDuration >= s.cfg.MaxBuffer
		if bufDuration < s.cfg.MinInputLength {
			// Too short to recognize; discard the noise blip.
			s.clearBuffer()
			return nil
		}
		return s.emit(now, ReasonSilenceTail, clear)
	}

	if s.cfg.MaxBuffer > 0 && bufDuration >= s.cfg.MaxBuffer {
		if bufDuration < s.cfg.MinInputLength {
			s.clearBuffer()
			return nil
		}
		return s.emit(now, ReasonMaxBuffer, true)
	}

	if !recognitionBusy && s.cfg.TranscribeRate > 0 && now-s.lastFlush >= s.cfg.TranscribeRate &&
		bufDuration >= s.cfg.MinInputLength {
		return s.emit(now, ReasonPeriodic, false)
	}

	return nil
}

// Flush force-emits whatever is buffered, used when the session stops mid
// utterance. Returns nil when the buffer is empty or below the minimum
// length.
func (s *Segmenter) Flush(now time.Duration) *Emission {
	if !s.hasBuf || !s.hadSpeech {
		s.clearBuffer()
		return nil
	}
	if now-s.bufStart < s.cfg.MinInputLength {
		s.clearBuffer()
		return nil
	}
	return s.emit(now, ReasonSilenceTail, true)
}

func (s *Segmenter) emit(now time.Duration, reason Reason, clearBuf bool) *Emission {
	snapshot := make([]byte, len(s.buf))
	copy(snapshot, s.buf)

	e := &Emission{
		PCM:    snapshot,
		Start:  s.bufStart,
		End:    now,
		Reason: reason,
		Final:  clearBuf,
	}
	s.lastFlush = now
	if clearBuf {
		s.clearBuffer()
	}
	return e
}

func (s *Segmenter) clearBuffer() {
	s.buf = s.buf[:0]
	s.hasBuf = false
	s.hadSpeech = false
}
