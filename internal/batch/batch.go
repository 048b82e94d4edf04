// Package batch drives the offline file pipeline: each input file is
// decoded, recognized in one pass, optionally translated, and handed to the
// export writers. Files are processed in order so progress and cancellation
// have simple semantics: canceling abandons the current file without output
// and skips the rest.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Dadangdut33/speech-translate/internal/config"
	"github.com/Dadangdut33/speech-translate/internal/observe"
	"github.com/Dadangdut33/speech-translate/internal/session"
	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/audio/decode"
	"github.com/Dadangdut33/speech-translate/pkg/export"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr/whisper"
	"github.com/Dadangdut33/speech-translate/pkg/provider/translate"
)

// Mode selects what the pipeline produces per file.
type Mode string

const (
	// ModeTranscribe writes only the recognized text.
	ModeTranscribe Mode = "transcribe"
	// ModeTranslate writes only the translated text.
	ModeTranslate Mode = "translate"
	// ModeBoth writes both.
	ModeBoth Mode = "both"
)

// Progress is the state of a run, reported after every change and returned
// when the run ends.
type Progress struct {
	FilesTotal int
	FilesDone  int

	// Transcribed and Translated count completed engine passes.
	Transcribed int
	Translated  int

	// Failed counts files that produced no output because decoding or
	// recognition failed. The run continues past them.
	Failed int

	// CurrentName is the file being processed, or the last one touched.
	CurrentName string

	// Canceled is set when the run was interrupted; the current file
	// produced no output and later files were not started.
	Canceled bool
}

// ProgressFunc receives progress snapshots. Called from the driver
// goroutine; implementations should return quickly.
type ProgressFunc func(Progress)

// Config holds the dependencies of a [Runner].
type Config struct {
	// Config supplies the recognition, translation, and export settings.
	Config *config.Config

	// Mode defaults by translation engine: none means transcribe only,
	// anything else means both.
	Mode Mode

	// Cache shares loaded recognition engines. Defaults to a private cache.
	Cache *asr.Cache

	// LoadEngine defaults to [whisper.Load].
	LoadEngine func(whisper.Config) (asr.Engine, error)

	// Translator overrides the engine built from the configuration.
	Translator translate.Engine

	// Decode overrides how files become PCM. Defaults to [decode.File].
	Decode func(ctx context.Context, path string) (audio.Conditioned, error)

	// Progress receives snapshots. Optional.
	Progress ProgressFunc

	// Metrics defaults to [observe.DefaultMetrics].
	Metrics *observe.Metrics

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Runner executes file pipeline runs. A Runner is stateless between runs
// and safe to reuse.
type Runner struct {
	cfg        *config.Config
	mode       Mode
	cache      *asr.Cache
	load       func(whisper.Config) (asr.Engine, error)
	translator translate.Engine
	decode     func(ctx context.Context, path string) (audio.Conditioned, error)
	progress   ProgressFunc
	metrics    *observe.Metrics
	logger     *slog.Logger
}

// New creates a Runner, filling missing optional dependencies with
// defaults.
func New(c Config) *Runner {
	r := &Runner{
		cfg:        c.Config,
		mode:       c.Mode,
		cache:      c.Cache,
		load:       c.LoadEngine,
		translator: c.Translator,
		decode:     c.Decode,
		progress:   c.Progress,
		metrics:    c.Metrics,
		logger:     c.Logger,
	}
	if r.mode == "" {
		if r.cfg.Translation.Engine == config.TranslatorNone || r.cfg.Translation.Engine == "" {
			r.mode = ModeTranscribe
		} else {
			r.mode = ModeBoth
		}
	}
	if r.cache == nil {
		r.cache = asr.NewCache()
	}
	if r.load == nil {
		r.load = whisper.Load
	}
	if r.decode == nil {
		r.decode = decode.File
	}
	if r.progress == nil {
		r.progress = func(Progress) {}
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run processes files in order and returns the final progress record. The
// returned error covers setup failures only; per-file failures are counted
// in the record and logged. Cancellation through ctx is not an error.
func (r *Runner) Run(ctx context.Context, files []string) (Progress, error) {
	p := Progress{FilesTotal: len(files)}
	if len(files) == 0 {
		return p, nil
	}

	opts, err := r.cfg.Recognition.Options()
	if err != nil {
		return p, fmt.Errorf("batch: recognition options: %w", err)
	}

	engCfg := r.cfg.Recognition.EngineConfig()
	key := engCfg.CacheKey()
	engine, err := r.cache.Acquire(key, func() (asr.Engine, error) { return r.load(engCfg) })
	if err != nil {
		return p, fmt.Errorf("batch: load recognition engine: %w", err)
	}
	defer func() {
		if err := r.cache.Release(key); err != nil {
			r.logger.Warn("release recognition engine", "error", err)
		}
	}()

	translator := r.translator
	if translator == nil {
		translator, err = session.NewTranslator(r.cfg.Translation)
		if err != nil {
			return p, fmt.Errorf("batch: %w", err)
		}
	}

	for _, path := range files {
		p.CurrentName = filepath.Base(path)
		r.progress(p)

		if ctx.Err() != nil {
			p.Canceled = true
			break
		}

		start := time.Now()
		canceled, err := r.processFile(ctx, engine, translator, opts, path)
		seconds := time.Since(start).Seconds()
		switch {
		case canceled:
			p.Canceled = true
			r.metrics.RecordFile(ctx, "canceled", seconds)
		case err != nil:
			p.Failed++
			r.metrics.RecordFile(ctx, "failed", seconds)
			r.logger.Error("file failed", "file", path, "error", err)
		default:
			p.FilesDone++
			p.Transcribed++
			if r.translated() {
				p.Translated++
			}
			r.metrics.RecordFile(ctx, "ok", seconds)
			r.logger.Info("file done", "file", path, "duration_s", seconds)
		}
		r.progress(p)
		if p.Canceled {
			break
		}
	}
	return p, nil
}

func (r *Runner) translated() bool {
	e := r.cfg.Translation.Engine
	return r.mode != ModeTranscribe && e != config.TranslatorNone && e != ""
}

// processFile runs one file end to end. The bool result reports
// cancellation, which produces no output and ends the run.
func (r *Runner) processFile(ctx context.Context, engine asr.Engine, translator translate.Engine, opts asr.Options, path string) (bool, error) {
	cond, err := r.decode(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return true, nil
		}
		return false, fmt.Errorf("decode: %w", err)
	}

	samples := audio.Float32Samples(cond.Data)
	res, err := engine.Recognize(ctx, samples, opts)
	if err != nil {
		if errors.Is(err, asr.ErrCanceled) || ctx.Err() != nil {
			return true, nil
		}
		return false, fmt.Errorf("recognize: %w", err)
	}

	var translated *asr.Result
	if r.mode != ModeTranscribe {
		tr, canceled, err := r.translateResult(ctx, engine, translator, opts, samples, res)
		if canceled {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("translate: %w", err)
		}
		translated = tr
	}

	if ctx.Err() != nil {
		return true, nil
	}

	dir := r.cfg.Export.Dir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	eopts := export.Options{
		Formats:      r.cfg.Export.Formats,
		SegmentLevel: r.cfg.Export.SegmentLevelEnabled(),
		WordLevel:    r.cfg.Export.WordLevel,
	}

	if r.mode != ModeTranslate {
		if _, err := export.WriteAll(dir, base, res, eopts); err != nil {
			return false, fmt.Errorf("export: %w", err)
		}
	}
	if translated != nil {
		if _, err := export.WriteAll(dir, base+".translated", *translated, eopts); err != nil {
			return false, fmt.Errorf("export translation: %w", err)
		}
	}
	return false, nil
}

// translateResult produces the translated counterpart of res, either with
// the model's built-in translate task or through the text engine with
// segment timing preserved.
func (r *Runner) translateResult(ctx context.Context, engine asr.Engine, translator translate.Engine, opts asr.Options, samples []float32, res asr.Result) (*asr.Result, bool, error) {
	if r.cfg.Translation.Engine == config.TranslatorWhisper {
		opts.Task = asr.TaskTranslate
		tr, err := engine.Recognize(ctx, samples, opts)
		if err != nil {
			if errors.Is(err, asr.ErrCanceled) || ctx.Err() != nil {
				return nil, true, nil
			}
			return nil, false, err
		}
		return &tr, false, nil
	}

	if translator == nil {
		return nil, false, fmt.Errorf("no translation engine configured")
	}

	source := r.cfg.Translation.Source
	if (source == "" || source == "auto") && res.Language != "" {
		source = res.Language
	}
	texts, err := translate.Segments(ctx, translator, res.Segments, source, r.cfg.Translation.Target)
	if err != nil {
		if ctx.Err() != nil {
			return nil, true, nil
		}
		return nil, false, err
	}

	tr := res
	tr.Segments = make([]asr.Segment, len(res.Segments))
	for i, seg := range res.Segments {
		seg.Text = texts[i]
		seg.Words = nil
		tr.Segments[i] = seg
	}
	return &tr, false, nil
}
