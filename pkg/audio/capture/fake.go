package capture

import (
	"sync"
	"time"
)

// FakeContext feeds canned PCM through the Context interface, so pipelines
// can be exercised without a sound card.
type FakeContext struct {
	pcm        []byte
	sampleRate int
	chunk      int
	realtime   bool
}

// NewFakeContext returns a context whose streams replay pcm (16-bit mono at
// sampleRate) in chunks of chunkSamples. When realtime is set the chunks are
// paced at the wire rate; otherwise they are delivered as fast as the
// consumer accepts them, followed by silence until stopped.
func NewFakeContext(pcm []byte, sampleRate, chunkSamples int, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, sampleRate: sampleRate, chunk: chunkSamples, realtime: realtime}
}

func (f *FakeContext) Devices(kind Kind) ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake device", Kind: kind, Default: true}}, nil
}

func (f *FakeContext) NewStream(_ Config, fn DataFunc) (Stream, error) {
	return &fakeStream{
		pcm:        f.pcm,
		interval:   time.Duration(f.chunk) * time.Second / time.Duration(f.sampleRate),
		chunkBytes: f.chunk * 2,
		realtime:   f.realtime,
		fn:         fn,
		drained:    make(chan struct{}),
	}, nil
}

func (f *FakeContext) Close() error { return nil }

type fakeStream struct {
	pcm        []byte
	interval   time.Duration
	chunkBytes int
	realtime   bool
	fn         DataFunc

	drained chan struct{}

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// Drained is closed once all canned PCM has been delivered and the stream
// has switched to feeding silence.
func (s *fakeStream) Drained() <-chan struct{} { return s.drained }

func (s *fakeStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.feed(s.stop, s.done)
	return nil
}

func (s *fakeStream) feed(stop, done chan struct{}) {
	defer close(done)

	silence := make([]byte, s.chunkBytes)
	pos := 0
	exhausted := false

	for {
		select {
		case <-stop:
			return
		default:
		}

		if pos < len(s.pcm) {
			end := min(pos+s.chunkBytes, len(s.pcm))
			chunk := make([]byte, end-pos)
			copy(chunk, s.pcm[pos:end])
			s.fn(chunk)
			pos = end
		} else {
			if !exhausted {
				exhausted = true
				close(s.drained)
			}
			s.fn(silence)
		}

		if s.realtime || exhausted {
			select {
			case <-stop:
				return
			case <-time.After(s.interval):
			}
		}
	}
}

func (s *fakeStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
	s.stop = nil
}

func (s *fakeStream) Close() { s.Stop() }
