package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dadangdut33/speech-translate/internal/config"
	"github.com/Dadangdut33/speech-translate/internal/observe"
	"github.com/Dadangdut33/speech-translate/internal/render"
	"github.com/Dadangdut33/speech-translate/internal/segment"
	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/audio/capture"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr/whisper"
	"github.com/Dadangdut33/speech-translate/pkg/provider/translate"
)

var (
	// ErrAlreadyRunning is returned by Start while a session is active.
	ErrAlreadyRunning = errors.New("session: already running")

	// ErrNoSources is returned by Start when neither capture source is
	// enabled.
	ErrNoSources = errors.New("session: no capture source enabled")

	// ErrNotRunning is returned by Pause outside the running state.
	ErrNotRunning = errors.New("session: not running")

	// ErrNotPaused is returned by Resume outside the paused state.
	ErrNotPaused = errors.New("session: not paused")
)

// recJob is one recognition request handed from a source pipeline to the
// recognition worker.
type recJob struct {
	source string
	em     *segment.Emission
}

// run holds the state of one start-to-stop cycle. A fresh run is built on
// every Start, so a Coordinator can be reused across sessions.
type run struct {
	sources     []*source
	engine      asr.Engine
	engineKey   string
	translator  translate.Engine
	opts        asr.Options
	transcript  *render.Composer
	translation *render.Composer

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	jobs   chan recJob
	events chan Event

	// pipeWG tracks the source pipelines so jobs can be closed once all of
	// them have drained; recDone marks the recognition worker's exit so
	// events can be closed after the last in-flight result.
	pipeWG  sync.WaitGroup
	recDone chan struct{}

	stopOnce sync.Once
	stopped  chan struct{}
}

// CoordinatorConfig holds the dependencies of a [Coordinator].
type CoordinatorConfig struct {
	// Config is the loaded application configuration.
	Config *config.Config

	// Capture is the audio backend streams are opened on.
	Capture capture.Context

	// Sink receives caption pushes. Defaults to [NopSink].
	Sink UISink

	// Cache shares loaded recognition engines across sessions. Defaults to
	// a private cache.
	Cache *asr.Cache

	// Metrics defaults to [observe.DefaultMetrics].
	Metrics *observe.Metrics

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// LoadEngine overrides how recognition engines are constructed on a
	// cache miss. Defaults to [whisper.Load].
	LoadEngine func(whisper.Config) (asr.Engine, error)

	// Translator overrides the text translation engine built from the
	// configuration. Ignored when the configured engine is none or
	// whisper.
	Translator translate.Engine
}

// Coordinator owns the live session lifecycle:
//
//	IDLE → LOADING → RUNNING ⇄ PAUSED → STOPPING → IDLE
//
// State only moves through the exported transition methods, which are safe
// for concurrent use. Stop is idempotent and drains in order: capture stops
// first, the pipelines flush their buffers, the recognition worker finishes
// in-flight work, then the engine reference is released.
type Coordinator struct {
	cfg        *config.Config
	capCtx     capture.Context
	sink       UISink
	cache      *asr.Cache
	metrics    *observe.Metrics
	logger     *slog.Logger
	load       func(whisper.Config) (asr.Engine, error)
	translator translate.Engine

	state    atomic.Int32
	canceled atomic.Bool
	recBusy  atomic.Bool

	recognitions atomic.Int64
	translations atomic.Int64
	failures     atomic.Int64
	overruns     atomic.Int64

	mu       sync.Mutex
	cur      *run
	language string

	out chan Event
}

// New creates an idle Coordinator. Missing optional dependencies are filled
// with defaults.
func New(cc CoordinatorConfig) *Coordinator {
	c := &Coordinator{
		cfg:        cc.Config,
		capCtx:     cc.Capture,
		sink:       cc.Sink,
		cache:      cc.Cache,
		metrics:    cc.Metrics,
		logger:     cc.Logger,
		load:       cc.LoadEngine,
		translator: cc.Translator,
		out:        make(chan Event, 64),
	}
	if c.sink == nil {
		c.sink = NopSink{}
	}
	if c.cache == nil {
		c.cache = asr.NewCache()
	}
	if c.metrics == nil {
		c.metrics = observe.DefaultMetrics()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.load == nil {
		c.load = whisper.Load
	}
	return c
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Events exposes the session's error events. The channel is never closed
// and slow consumers miss events rather than stalling the pipeline.
func (c *Coordinator) Events() <-chan Event {
	return c.out
}

// Start brings the session from idle to running: it acquires the
// recognition engine, builds the gates and translation engine, opens the
// capture streams, and spawns the workers. A failure at any point releases
// everything acquired so far and returns the coordinator to idle.
func (c *Coordinator) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateLoading)) {
		return ErrAlreadyRunning
	}

	r, err := c.setup(ctx)
	if err != nil {
		c.state.Store(int32(StateIdle))
		return err
	}

	c.canceled.Store(false)
	c.recognitions.Store(0)
	c.translations.Store(0)
	c.failures.Store(0)
	c.overruns.Store(0)

	c.mu.Lock()
	c.cur = r
	c.language = ""
	c.mu.Unlock()

	c.spawn(r)
	c.metrics.ActiveSessions.Add(r.ctx, 1)

	for _, s := range r.sources {
		if err := s.stream.Start(); err != nil {
			c.canceled.Store(true)
			r.stopOnce.Do(func() { c.stopRun(r) })
			return fmt.Errorf("session: start %s capture: %w", s.name, err)
		}
	}

	c.state.Store(int32(StateRunning))

	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.name)
	}
	c.logger.Info("session started",
		"sources", names,
		"recognition", string(c.cfg.Recognition.Backend),
		"translation", string(c.cfg.Translation.Engine),
	)
	return nil
}

// setup builds a run from the configuration, acquiring the engine and
// opening streams. On error everything acquired so far is released.
func (c *Coordinator) setup(ctx context.Context) (*run, error) {
	type wantedSource struct {
		name string
		cfg  config.SourceConfig
		kind capture.Kind
	}
	var wanted []wantedSource
	if c.cfg.Mic.Enabled {
		wanted = append(wanted, wantedSource{"mic", c.cfg.Mic, capture.Microphone})
	}
	if c.cfg.Speaker.Enabled {
		wanted = append(wanted, wantedSource{"speaker", c.cfg.Speaker, capture.Loopback})
	}
	if len(wanted) == 0 {
		return nil, ErrNoSources
	}

	opts, err := c.cfg.Recognition.Options()
	if err != nil {
		return nil, fmt.Errorf("session: recognition options: %w", err)
	}

	engCfg := c.cfg.Recognition.EngineConfig()
	key := engCfg.CacheKey()
	engine, err := c.cache.Acquire(key, func() (asr.Engine, error) { return c.load(engCfg) })
	if err != nil {
		return nil, fmt.Errorf("session: load recognition engine: %w", err)
	}

	fail := func(err error) (*run, error) {
		_ = c.cache.Release(key)
		return nil, err
	}

	translator, err := c.pickTranslator()
	if err != nil {
		return fail(err)
	}

	r := &run{
		engine:     engine,
		engineKey:  key,
		translator: translator,
		opts:       opts,
		transcript: render.NewComposer(composerConfig(c.cfg.Render,
			render.RTLLanguage(c.cfg.Recognition.Language))),
		translation: render.NewComposer(composerConfig(c.cfg.Render,
			render.RTLLanguage(c.cfg.Translation.Target))),
		group:   new(errgroup.Group),
		jobs:    make(chan recJob, 4),
		events:  make(chan Event, 32),
		recDone: make(chan struct{}),
		stopped: make(chan struct{}),
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())

	for _, w := range wanted {
		gate, err := buildGate(w.cfg.Gate, c.logger)
		if err != nil {
			c.closeSources(r)
			return fail(err)
		}
		s := &source{
			name:       w.name,
			frames:     make(chan audio.Frame, frameQueueDepth),
			gate:       gate,
			seg:        segment.New(segmenterConfig(w.cfg.Segment, w.cfg.Gate.GateEnabled())),
			sampleRate: audio.RecognitionRate,
		}
		stream, err := c.capCtx.NewStream(capture.Config{
			SampleRate: audio.RecognitionRate,
			Channels:   1,
			Kind:       w.kind,
			DeviceID:   w.cfg.Device,
		}, s.push)
		if err != nil {
			_ = gate.Close()
			c.closeSources(r)
			return fail(fmt.Errorf("session: open %s stream: %w", w.name, err))
		}
		s.stream = stream
		r.sources = append(r.sources, s)
	}
	return r, nil
}

func (c *Coordinator) pickTranslator() (translate.Engine, error) {
	switch c.cfg.Translation.Engine {
	case config.TranslatorNone, config.TranslatorWhisper, "":
		return nil, nil
	}
	if c.translator != nil {
		return c.translator, nil
	}
	return NewTranslator(c.cfg.Translation)
}

func (c *Coordinator) closeSources(r *run) {
	for _, s := range r.sources {
		s.stream.Close()
		_ = s.gate.Close()
	}
	if r.cancel != nil {
		r.cancel()
	}
}

func (c *Coordinator) spawn(r *run) {
	for _, s := range r.sources {
		s := s
		r.pipeWG.Add(1)
		r.group.Go(func() error {
			defer r.pipeWG.Done()
			c.runSource(r, s)
			return nil
		})
	}
	r.group.Go(func() error {
		defer close(r.recDone)
		c.runRecognizer(r)
		return nil
	})
	r.group.Go(func() error {
		c.runEvents(r)
		return nil
	})
}

// Pause keeps capture open but discards frames and clears the utterance
// buffers, so resuming starts a fresh utterance.
func (c *Coordinator) Pause() error {
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StatePaused)) {
		return ErrNotRunning
	}
	c.logger.Info("session paused")
	return nil
}

// Resume returns a paused session to running.
func (c *Coordinator) Resume() error {
	if !c.state.CompareAndSwap(int32(StatePaused), int32(StateRunning)) {
		return ErrNotPaused
	}
	c.logger.Info("session resumed")
	return nil
}

// Stop gracefully ends the session: capture stops, buffered audio is
// flushed and recognized, and the engine reference is released. Safe to
// call concurrently and repeatedly; every call waits for the drain to
// finish or ctx to expire.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	r := c.cur
	c.mu.Unlock()
	if r == nil {
		return nil
	}

	r.stopOnce.Do(func() { go c.stopRun(r) })

	select {
	case <-r.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel aborts the session without waiting for results: in-flight
// recognition is interrupted and buffered audio is discarded.
func (c *Coordinator) Cancel(ctx context.Context) error {
	c.canceled.Store(true)
	c.mu.Lock()
	r := c.cur
	c.mu.Unlock()
	if r != nil {
		r.cancel()
	}
	return c.Stop(ctx)
}

// stopRun performs the ordered drain. It runs once per run, from whichever
// Stop call won the race.
func (c *Coordinator) stopRun(r *run) {
	c.state.Store(int32(StateStopping))

	for _, s := range r.sources {
		s.stream.Stop()
		s.stream.Close()
	}
	for _, s := range r.sources {
		close(s.frames)
	}
	r.pipeWG.Wait()
	close(r.jobs)
	<-r.recDone
	close(r.events)
	_ = r.group.Wait()
	r.cancel()

	if err := c.cache.Release(r.engineKey); err != nil {
		c.logger.Warn("release recognition engine", "error", err)
	}
	c.metrics.ActiveSessions.Add(context.Background(), -1)

	c.mu.Lock()
	c.cur = nil
	c.mu.Unlock()
	c.state.Store(int32(StateIdle))

	c.logger.Info("session stopped",
		"recognitions", c.recognitions.Load(),
		"translations", c.translations.Load(),
		"failures", c.failures.Load(),
		"overruns", c.overruns.Load(),
	)
	close(r.stopped)
}

// Status returns a snapshot for UI polling.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	lang := c.language
	r := c.cur
	c.mu.Unlock()

	st := Status{
		State:        c.State(),
		Language:     lang,
		Recognitions: c.recognitions.Load(),
		Translations: c.translations.Load(),
		Failures:     c.failures.Load(),
		Overruns:     c.overruns.Load(),
		Buffered:     make(map[string]time.Duration),
	}
	if r != nil {
		for _, s := range r.sources {
			st.Buffered[s.name] = time.Duration(s.buffered.Load())
		}
	}
	return st
}

// runSource drains one capture queue: condition, gate, segment. It exits
// when the frame channel closes, flushing whatever is still buffered as a
// final utterance unless the session was canceled.
func (c *Coordinator) runSource(r *run, s *source) {
	defer func() { _ = s.gate.Close() }()

	paused := false
	var lastEnd time.Duration
	for f := range s.frames {
		if d := s.takeDropped(); d > 0 {
			c.postEvent(r, Event{Kind: EventOverrun, Source: s.name, Dropped: d})
		}
		if c.canceled.Load() {
			continue
		}
		if c.State() == StatePaused {
			if !paused {
				paused = true
				s.seg.Reset()
				s.gate.Reset()
				s.buffered.Store(0)
			}
			continue
		}
		paused = false

		cond := audio.ToMono16k(f)
		lastEnd = cond.End()

		speech := true
		if ok, err := s.gate.IsSpeech(cond); err == nil {
			speech = ok
		}

		em := s.seg.Process(cond, speech, c.recognitionBusy(r))
		s.buffered.Store(int64(s.seg.BufferDuration()))
		if em != nil {
			c.metrics.RecordEmission(r.ctx, s.name, string(em.Reason))
			c.dispatch(r, s.name, em)
		}
	}

	if !c.canceled.Load() {
		if em := s.seg.Flush(lastEnd); em != nil {
			c.metrics.RecordEmission(r.ctx, s.name, string(em.Reason))
			c.dispatch(r, s.name, em)
		}
	}
	s.buffered.Store(0)
}

// recognitionBusy reports whether a recognition call is active or queued.
// The segmenter uses it to hold back periodic emissions; forced and
// end-of-utterance flushes are queued regardless.
func (c *Coordinator) recognitionBusy(r *run) bool {
	return c.recBusy.Load() || len(r.jobs) > 0
}

func (c *Coordinator) dispatch(r *run, name string, em *segment.Emission) {
	select {
	case r.jobs <- recJob{source: name, em: em}:
	case <-r.ctx.Done():
	}
}

func (c *Coordinator) postEvent(r *run, ev Event) {
	select {
	case r.events <- ev:
	default:
	}
}

// runRecognizer is the single recognition worker; one call is in flight at
// any time, and results reach the composers in emission order.
func (c *Coordinator) runRecognizer(r *run) {
	for job := range r.jobs {
		c.recBusy.Store(true)
		c.recognizeJob(r, job)
		c.recBusy.Store(false)
	}
}

func (c *Coordinator) recognizeJob(r *run, job recJob) {
	if c.canceled.Load() {
		return
	}
	ctx, span := observe.StartSpan(r.ctx, "session.recognize")
	defer span.End()

	samples := audio.Float32Samples(job.em.PCM)

	start := time.Now()
	res, err := r.engine.Recognize(ctx, samples, r.opts)
	c.metrics.RecordRecognition(ctx, string(c.cfg.Recognition.Backend),
		string(asr.TaskTranscribe), time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, asr.ErrCanceled) || ctx.Err() != nil {
			return
		}
		c.metrics.RecordEngineFailure(ctx, "whisper", "recognize")
		c.postEvent(r, Event{Kind: EventRecognitionFailure, Source: job.source, Err: err})
		return
	}
	c.recognitions.Add(1)
	if res.Language != "" {
		c.mu.Lock()
		c.language = res.Language
		c.mu.Unlock()
	}

	if job.em.Final {
		r.transcript.ApplyFinal(res)
	} else {
		r.transcript.ApplyIncremental(res)
	}
	c.sink.SetTranscript(r.transcript.Text(), r.transcript.Spans())

	switch {
	case c.cfg.Translation.Engine == config.TranslatorWhisper:
		c.translateWhisper(ctx, r, job, samples)
	case r.translator != nil:
		c.translateText(ctx, r, job, res)
	}
}

// translateWhisper runs the recognition model's built-in translate-to-English
// task over the same samples.
func (c *Coordinator) translateWhisper(ctx context.Context, r *run, job recJob, samples []float32) {
	opts := r.opts
	opts.Task = asr.TaskTranslate

	start := time.Now()
	res, err := r.engine.Recognize(ctx, samples, opts)
	c.metrics.RecordRecognition(ctx, string(c.cfg.Recognition.Backend),
		string(asr.TaskTranslate), time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, asr.ErrCanceled) || ctx.Err() != nil {
			return
		}
		c.metrics.RecordEngineFailure(ctx, "whisper", "translate")
		c.postEvent(r, Event{Kind: EventTranslationFailure, Source: job.source, Err: err})
		return
	}
	c.translations.Add(1)
	c.applyTranslation(r, job, res)
}

// translateText sends the recognized segment texts through the configured
// text engine. A failure drops this translation and keeps the transcript.
func (c *Coordinator) translateText(ctx context.Context, r *run, job recJob, res asr.Result) {
	source := c.cfg.Translation.Source
	if (source == "" || source == "auto") && res.Language != "" {
		source = res.Language
	}

	start := time.Now()
	texts, err := translate.Segments(ctx, r.translator, res.Segments, source, c.cfg.Translation.Target)
	c.metrics.RecordTranslation(ctx, r.translator.Name(), time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.metrics.RecordEngineFailure(ctx, r.translator.Name(), "translate")
		c.postEvent(r, Event{Kind: EventTranslationFailure, Source: job.source, Err: err})
		return
	}
	c.translations.Add(1)

	tr := res
	tr.Segments = make([]asr.Segment, len(res.Segments))
	for i, seg := range res.Segments {
		seg.Text = texts[i]
		// Word timings do not survive translation.
		seg.Words = nil
		tr.Segments[i] = seg
	}
	c.applyTranslation(r, job, tr)
}

func (c *Coordinator) applyTranslation(r *run, job recJob, res asr.Result) {
	if job.em.Final {
		r.translation.ApplyFinal(res)
	} else {
		r.translation.ApplyIncremental(res)
	}
	c.sink.SetTranslation(r.translation.Text(), r.translation.Spans())
}

// runEvents is the session's status loop: it accounts, logs, and forwards
// the typed events workers post, and decides whether the session survives
// them. Only fatal events end the session.
func (c *Coordinator) runEvents(r *run) {
	for ev := range r.events {
		switch ev.Kind {
		case EventOverrun:
			c.overruns.Add(ev.Dropped)
			c.metrics.RecordOverrun(r.ctx, ev.Source, ev.Dropped)
			c.logger.Warn("capture overrun, frames dropped",
				"source", ev.Source, "dropped", ev.Dropped)
		case EventRecognitionFailure, EventTranslationFailure:
			c.failures.Add(1)
			c.logger.Warn("engine failure, result dropped",
				"kind", string(ev.Kind), "source", ev.Source, "error", ev.Err)
		case EventFatal:
			c.logger.Error("fatal session error", "source", ev.Source, "error", ev.Err)
			go func() { _ = c.Stop(context.Background()) }()
		}

		select {
		case c.out <- ev:
		default:
		}
	}
}

// composerConfig maps the render settings onto a caption composer.
func composerConfig(rc config.RenderConfig, rtl bool) render.Config {
	low, _ := render.ParseHexColor(rc.GradientLow)
	high, _ := render.ParseHexColor(rc.GradientHigh)
	return render.Config{
		Separator:        rc.Separator,
		MaxSentences:     rc.MaxSentences,
		MaxChars:         rc.MaxChars,
		MaxPerLine:       rc.MaxCharsPerLine,
		ColorizeWords:    rc.ColorizeWords,
		ColorizeSegments: rc.ColorizeSegments,
		Gradient:         render.Gradient{Low: low, High: high},
		RTL:              rtl,
	}
}
