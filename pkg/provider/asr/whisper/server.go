package whisper

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

// Compile-time assertion that Server satisfies asr.Engine.
var _ asr.Engine = (*Server)(nil)

// Server implements asr.Engine against a running whisper-server binary,
// which exposes a REST API at POST /inference. The model lives in the
// server process; this engine only ships WAV-wrapped audio over and parses
// the verbose JSON response.
type Server struct {
	serverURL  string
	httpClient *http.Client
}

// ServerOption is a functional option for configuring a Server engine.
type ServerOption func(*Server)

// WithHTTPClient replaces the default HTTP client (30 s timeout).
func WithHTTPClient(c *http.Client) ServerOption {
	return func(s *Server) { s.httpClient = c }
}

// NewServer creates an engine talking to the whisper-server at serverURL
// (e.g. "http://localhost:8080").
func NewServer(serverURL string, opts ...ServerOption) (*Server, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	s := &Server{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close is a no-op; the model belongs to the server process.
func (s *Server) Close() error { return nil }

// serverResponse mirrors whisper-server's verbose_json output.
type serverResponse struct {
	Language string `json:"language"`
	Segments []struct {
		ID               int     `json:"id"`
		Start            float64 `json:"start"`
		End              float64 `json:"end"`
		Text             string  `json:"text"`
		AvgLogProb       float64 `json:"avg_logprob"`
		NoSpeechProb     float64 `json:"no_speech_prob"`
		Temperature      float64 `json:"temperature"`
		CompressionRatio float64 `json:"compression_ratio"`
	} `json:"segments"`
}

// Recognize wraps the samples as WAV and POSTs them to /inference.
func (s *Server) Recognize(ctx context.Context, samples []float32, opts asr.Options) (asr.Result, error) {
	if err := ctx.Err(); err != nil {
		return asr.Result{}, asr.ErrCanceled
	}

	body, contentType, err := s.buildRequest(samples, opts)
	if err != nil {
		return asr.Result{}, &asr.EngineError{Kind: asr.KindTransport, Backend: "server", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/inference", body)
	if err != nil {
		return asr.Result{}, &asr.EngineError{Kind: asr.KindTransport, Backend: "server", Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return asr.Result{}, asr.ErrCanceled
		}
		return asr.Result{}, &asr.EngineError{Kind: asr.KindTransport, Backend: "server", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return asr.Result{}, &asr.EngineError{
			Kind:    asr.KindInference,
			Backend: "server",
			Err:     fmt.Errorf("server returned HTTP %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return asr.Result{}, &asr.EngineError{Kind: asr.KindTransport, Backend: "server", Err: err}
	}

	var parsed serverResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return asr.Result{}, &asr.EngineError{Kind: asr.KindInference, Backend: "server", Err: fmt.Errorf("parse response: %w", err)}
	}

	result := asr.Result{
		Language:       parsed.Language,
		AudioDuration:  time.Duration(len(samples)) * time.Second / audio.RecognitionRate,
		ProcessingTime: time.Since(start),
	}
	for _, seg := range parsed.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, asr.Segment{
			ID:               len(result.Segments),
			Start:            time.Duration(seg.Start * float64(time.Second)),
			End:              time.Duration(seg.End * float64(time.Second)),
			Text:             text,
			AvgLogProb:       seg.AvgLogProb,
			NoSpeechProb:     seg.NoSpeechProb,
			Temperature:      seg.Temperature,
			CompressionRatio: seg.CompressionRatio,
		})
	}
	return result, nil
}

func (s *Server) buildRequest(samples []float32, opts asr.Options) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(audio.EncodeWAV(float32ToPCM(samples), audio.RecognitionRate, 1)); err != nil {
		return nil, "", fmt.Errorf("write wav data: %w", err)
	}

	fields := map[string]string{
		"response_format": "verbose_json",
		"temperature":     strconv.FormatFloat(opts.Temperature, 'f', -1, 64),
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.Task == asr.TaskTranslate {
		fields["translate"] = "true"
	}
	if opts.BeamSize > 1 {
		fields["beam_size"] = strconv.Itoa(opts.BeamSize)
	}
	if opts.TemperatureStep > 0 {
		fields["temperature_inc"] = strconv.FormatFloat(opts.TemperatureStep, 'f', -1, 64)
	}
	if opts.InitialPrompt != "" {
		fields["prompt"] = opts.InitialPrompt
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &body, mw.FormDataContentType(), nil
}

// float32ToPCM converts [-1, 1] samples back to 16-bit little-endian PCM
// for the WAV upload.
func float32ToPCM(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, v := range samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*32767)))
	}
	return out
}
