// Package whisper provides the Whisper-backed recognition engines.
//
// Two backends exist: Native runs inference in-process through the
// whisper.cpp CGO bindings, Server talks to a whisper-server binary over
// HTTP. Both implement asr.Engine, so the pipeline does not care which one
// the configuration selected.
//
// Usage:
//
//	eng, err := whisper.Load(whisper.Config{Backend: whisper.BackendNative, ModelPath: "models/ggml-base.bin"})
//	result, err := eng.Recognize(ctx, samples, asr.Options{Language: "en"})
package whisper

import (
	"fmt"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

// Backend selects how inference runs.
type Backend string

const (
	// BackendNative loads the model in-process via CGO.
	BackendNative Backend = "native"
	// BackendServer sends audio to a whisper-server over HTTP.
	BackendServer Backend = "server"
)

// Config selects and locates a Whisper backend.
type Config struct {
	Backend Backend
	// ModelPath is the ggml model file, required for BackendNative.
	ModelPath string
	// ServerURL is the whisper-server base URL, required for BackendServer.
	ServerURL string
}

// CacheKey returns the asr.Cache key under which this engine should be
// shared. Transcription and translation with the same model resolve to the
// same key, so the model is loaded once.
func (c Config) CacheKey() string {
	if c.Backend == BackendServer {
		return "server|" + c.ServerURL
	}
	return "native|" + c.ModelPath
}

// Load creates the engine described by cfg.
func Load(cfg Config) (asr.Engine, error) {
	switch cfg.Backend {
	case BackendNative, "":
		return NewNative(cfg.ModelPath)
	case BackendServer:
		return NewServer(cfg.ServerURL)
	default:
		return nil, fmt.Errorf("whisper: unknown backend %q", cfg.Backend)
	}
}
