//go:build linux

package capture

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
)

type pulseContext struct {
	client *pulse.Client
}

// NewContext connects to the PulseAudio (or PipeWire's Pulse shim) server.
func NewContext() (Context, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("speech-translate"))
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices(kind Kind) ([]DeviceInfo, error) {
	sources, err := p.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("pulse list sources: %w", err)
	}
	var def string
	if d, err := p.client.DefaultSource(); err == nil && d != nil {
		def = d.ID()
	}
	var devices []DeviceInfo
	for _, s := range sources {
		// Monitor sources expose the output of a sink; they are the
		// loopback devices of the Pulse world.
		monitor := strings.HasSuffix(s.ID(), ".monitor")
		if (kind == Loopback) != monitor {
			continue
		}
		devices = append(devices, DeviceInfo{
			ID:      s.ID(),
			Name:    s.Name(),
			Kind:    kind,
			Default: s.ID() == def,
		})
	}
	return devices, nil
}

func (p *pulseContext) NewStream(cfg Config, fn DataFunc) (Stream, error) {
	source, err := p.resolveSource(cfg)
	if err != nil {
		return nil, err
	}
	return &pulseStream{
		client:     p.client,
		source:     source,
		sampleRate: int(cfg.SampleRate),
		channels:   int(cfg.Channels),
		fn:         fn,
	}, nil
}

func (p *pulseContext) resolveSource(cfg Config) (*pulse.Source, error) {
	if cfg.DeviceID != "" {
		source, err := p.client.SourceByID(cfg.DeviceID)
		if err != nil || source == nil {
			return nil, fmt.Errorf("%w: source %q", audio.ErrDeviceUnavailable, cfg.DeviceID)
		}
		return source, nil
	}
	if cfg.Kind == Microphone {
		// nil lets pulse pick the server default source.
		return nil, nil
	}
	// Default loopback: the monitor of the default sink.
	sink, err := p.client.DefaultSink()
	if err != nil || sink == nil {
		return nil, fmt.Errorf("%w: no default sink to monitor", audio.ErrDeviceUnavailable)
	}
	source, err := p.client.SourceByID(sink.ID() + ".monitor")
	if err != nil || source == nil {
		return nil, fmt.Errorf("%w: sink %q has no monitor source", audio.ErrDeviceUnavailable, sink.ID())
	}
	return source, nil
}

func (p *pulseContext) Close() error {
	p.client.Close()
	return nil
}

type pulseStream struct {
	client     *pulse.Client
	source     *pulse.Source
	sampleRate int
	channels   int
	fn         DataFunc

	running atomic.Bool

	mu     sync.Mutex
	stream *pulse.RecordStream
	stop   chan struct{}
	done   chan struct{}
}

func (s *pulseStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return nil
	}

	writer := pulse.Int16Writer(func(buf []int16) (int, error) {
		if len(buf) == 0 || !s.running.Load() {
			return len(buf), nil
		}
		data := make([]byte, len(buf)*2)
		for i, v := range buf {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
		}
		s.fn(data)
		return len(buf), nil
	})

	opts := []pulse.RecordOption{
		pulse.RecordSampleRate(s.sampleRate),
		pulse.RecordLatency(0.05),
	}
	if s.channels <= 1 {
		opts = append(opts, pulse.RecordMono)
	} else {
		opts = append(opts, pulse.RecordStereo)
	}
	if s.source != nil {
		opts = append(opts, pulse.RecordSource(s.source))
	}

	stream, err := s.client.NewRecord(writer, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", audio.ErrDeviceOpenFailed, err)
	}

	s.stream = stream
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running.Store(true)

	go func() {
		defer close(s.done)
		stream.Start()
		<-s.stop
		stream.Stop()
		stream.Close()
	}()

	return nil
}

func (s *pulseStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return
	}
	s.running.Store(false)
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
	s.stream = nil
}

func (s *pulseStream) Close() {
	s.Stop()
}
