package session

import (
	"sync/atomic"
	"time"

	"github.com/Dadangdut33/speech-translate/internal/segment"
	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/audio/capture"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

// frameQueueDepth bounds the per-source capture queue. At the default chunk
// size this is roughly two seconds of headroom before frames are dropped.
const frameQueueDepth = 64

// source is the per-capture-source pipeline state: the device stream, its
// bounded frame queue, the voice gate, and the utterance segmenter. The
// gate and segmenter are confined to the source's pipeline goroutine.
type source struct {
	name   string
	stream capture.Stream
	frames chan audio.Frame
	gate   vad.Gate
	seg    *segment.Segmenter

	// samplesSeen is owned by the capture callback and stamps frames with
	// their stream-relative start time.
	samplesSeen int64
	sampleRate  int

	// buffered mirrors the segmenter's buffer duration in nanoseconds for
	// status snapshots.
	buffered atomic.Int64

	// dropped counts capture frames discarded under backpressure since the
	// last overrun event.
	dropped atomic.Int64
}

// push is the capture data callback. It runs on the backend's audio thread
// and must not block: when the queue is full the oldest frame is discarded
// so capture stays live and the loss is surfaced as an overrun.
func (s *source) push(pcm []byte) {
	data := make([]byte, len(pcm))
	copy(data, pcm)

	f := audio.Frame{
		Data:       data,
		SampleRate: s.sampleRate,
		Channels:   1,
		Timestamp:  time.Duration(s.samplesSeen) * time.Second / time.Duration(s.sampleRate),
	}
	s.samplesSeen += int64(len(pcm) / 2)

	select {
	case s.frames <- f:
		return
	default:
	}
	select {
	case <-s.frames:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.frames <- f:
	default:
		s.dropped.Add(1)
	}
}

// takeDropped returns and clears the drop counter.
func (s *source) takeDropped() int64 {
	return s.dropped.Swap(0)
}
