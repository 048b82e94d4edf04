// This file contains the native engine backed by the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

// Compile-time assertion that Native satisfies asr.Engine.
var _ asr.Engine = (*Native)(nil)

// Native implements asr.Engine using the whisper.cpp Go bindings (CGO).
// The model is loaded once and shared; each Recognize call creates its own
// whisper context, so concurrent calls do not interfere.
type Native struct {
	model whisperlib.Model

	mu     sync.Mutex
	closed bool
}

// NewNative loads the whisper.cpp model from modelPath. The caller must
// call Close when the engine is no longer needed.
func NewNative(modelPath string) (*Native, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", asr.ErrModelNotFound, modelPath, err)
	}
	return &Native{model: model}, nil
}

// Close releases the whisper model.
func (n *Native) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.model.Close()
}

// Recognize runs whisper.cpp inference over the samples. Cancellation is
// checked between setup and inference and again per segment; a decode that
// already started runs to completion (the bindings expose no abort hook),
// but its result is discarded.
func (n *Native) Recognize(ctx context.Context, samples []float32, opts asr.Options) (asr.Result, error) {
	if err := ctx.Err(); err != nil {
		return asr.Result{}, asr.ErrCanceled
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return asr.Result{}, &asr.EngineError{Kind: asr.KindInference, Backend: "native", Err: errors.New("engine closed")}
	}
	n.mu.Unlock()

	// Each context is NOT thread-safe, but the model can be shared across
	// goroutines.
	wctx, err := n.model.NewContext()
	if err != nil {
		return asr.Result{}, &asr.EngineError{Kind: asr.KindInference, Backend: "native", Err: fmt.Errorf("create context: %w", err)}
	}

	n.applyOptions(wctx, opts)

	start := time.Now()
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		if ctx.Err() != nil {
			return asr.Result{}, asr.ErrCanceled
		}
		return asr.Result{}, &asr.EngineError{Kind: asr.KindInference, Backend: "native", Err: fmt.Errorf("process audio: %w", err)}
	}

	result := asr.Result{
		Language:       wctx.DetectedLanguage(),
		AudioDuration:  time.Duration(len(samples)) * time.Second / audio.RecognitionRate,
		ProcessingTime: time.Since(start),
	}
	if result.Language == "" {
		result.Language = opts.Language
	}

	for {
		if err := ctx.Err(); err != nil {
			return asr.Result{}, asr.ErrCanceled
		}
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return asr.Result{}, &asr.EngineError{Kind: asr.KindInference, Backend: "native", Err: fmt.Errorf("read segment: %w", err)}
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, convertSegment(len(result.Segments), segment, opts))
	}

	return result, nil
}

func (n *Native) applyOptions(wctx whisperlib.Context, opts asr.Options) {
	lang := opts.Language
	if opts.Task == asr.TaskTranslate {
		wctx.SetTranslate(true)
	}
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, letting the model detect", "language", lang, "error", err)
	}

	if opts.BeamSize > 1 {
		wctx.SetBeamSize(opts.BeamSize)
	}
	wctx.SetTemperature(float32(opts.Temperature))
	if opts.TemperatureStep > 0 {
		wctx.SetTemperatureFallback(float32(opts.TemperatureStep))
	}
	if opts.InitialPrompt != "" {
		wctx.SetInitialPrompt(opts.InitialPrompt)
	}
	if !opts.ConditionOnPreviousText {
		// Zero retained tokens disables cross-window conditioning.
		wctx.SetMaxContext(0)
	}
	if opts.WordTimestamps {
		wctx.SetTokenTimestamps(true)
	}
	if opts.EntropyThreshold > 0 {
		wctx.SetEntropyThold(float32(opts.EntropyThreshold))
	}
	if opts.MaxSegmentLength > 0 {
		wctx.SetMaxSegmentLength(uint(opts.MaxSegmentLength))
	}
	if opts.Threads > 0 {
		wctx.SetThreads(uint(opts.Threads))
	}
}

// convertSegment maps a bindings segment onto the provider type, deriving
// the average log probability from per-token confidences.
func convertSegment(id int, s whisperlib.Segment, opts asr.Options) asr.Segment {
	out := asr.Segment{
		ID:          id,
		Start:       s.Start,
		End:         s.End,
		Text:        strings.TrimSpace(s.Text),
		Temperature: opts.Temperature,
	}

	var logSum float64
	counted := 0
	for _, tok := range s.Tokens {
		p := float64(tok.P)
		if p > 0 {
			logSum += math.Log(p)
			counted++
		}
		if opts.WordTimestamps && strings.TrimSpace(tok.Text) != "" {
			out.Words = append(out.Words, asr.Word{
				Text:        tok.Text,
				Start:       tok.Start,
				End:         tok.End,
				Probability: p,
			})
		}
	}
	if counted > 0 {
		out.AvgLogProb = logSum / float64(counted)
	}
	return out
}
