// Command speechtranslate captures live speech or decodes audio files,
// recognizes the speech with Whisper, optionally translates it, and writes
// the result to the terminal or to subtitle files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Dadangdut33/speech-translate/internal/batch"
	"github.com/Dadangdut33/speech-translate/internal/config"
	"github.com/Dadangdut33/speech-translate/internal/observe"
	"github.com/Dadangdut33/speech-translate/internal/render"
	"github.com/Dadangdut33/speech-translate/internal/session"
	"github.com/Dadangdut33/speech-translate/pkg/audio/capture"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	listDevices := flag.Bool("list-devices", false, "list capture devices and exit")
	task := flag.String("task", "", "file mode output: transcribe, translate, or both (default: derived from the translation engine)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "speechtranslate: %v\n", err)
		return 1
	}

	level := new(slog.LevelVar)
	level.Set(cfg.LogLevel.Slog())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *listDevices {
		return printDevices()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("telemetry init failed", "error", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "error", err)
		}
	}()

	// Positional arguments switch to the offline file pipeline.
	if files := flag.Args(); len(files) > 0 {
		return runBatch(ctx, cfg, batch.Mode(*task), files)
	}
	return runLive(ctx, *configPath, cfg, level)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %q not found", path)
	}
	return cfg, err
}

func printDevices() int {
	cctx, err := capture.NewContext()
	if err != nil {
		slog.Error("audio backend unavailable", "error", err)
		return 1
	}
	defer cctx.Close()

	for _, kind := range []capture.Kind{capture.Microphone, capture.Loopback} {
		devices, err := cctx.Devices(kind)
		if err != nil {
			slog.Error("device enumeration failed", "kind", kind.String(), "error", err)
			return 1
		}
		fmt.Printf("%s devices:\n", kind)
		for _, d := range devices {
			marker := " "
			if d.Default {
				marker = "*"
			}
			fmt.Printf("  %s %-40s %s\n", marker, d.Name, d.ID)
		}
	}
	return 0
}

func runBatch(ctx context.Context, cfg *config.Config, mode batch.Mode, files []string) int {
	runner := batch.New(batch.Config{
		Config: cfg,
		Mode:   mode,
		Progress: func(p batch.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s", p.FilesDone, p.FilesTotal, p.CurrentName)
		},
	})

	p, err := runner.Run(ctx, files)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		slog.Error("file pipeline failed", "error", err)
		return 1
	}
	slog.Info("file pipeline finished",
		"done", p.FilesDone,
		"failed", p.Failed,
		"canceled", p.Canceled,
	)
	if p.Canceled || p.Failed > 0 {
		return 1
	}
	return 0
}

func runLive(ctx context.Context, configPath string, cfg *config.Config, level *slog.LevelVar) int {
	cctx, err := capture.NewContext()
	if err != nil {
		slog.Error("audio backend unavailable", "error", err)
		return 1
	}
	defer cctx.Close()

	coord := session.New(session.CoordinatorConfig{
		Config:  cfg,
		Capture: cctx,
		Sink:    &terminalSink{},
	})

	// Reloads of the pipeline sections take effect on the next session;
	// the log level applies immediately.
	watcher, err := config.NewWatcher(configPath, func(_, _ *config.Config, d config.Diff) {
		if d.LogLevelChanged {
			level.Set(d.NewLogLevel.Slog())
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	if err := coord.Start(ctx); err != nil {
		slog.Error("session start failed", "error", err)
		return 1
	}
	slog.Info("listening, press Ctrl+C to stop")

	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := coord.Stop(sctx); err != nil {
		slog.Error("session stop failed", "error", err)
		return 1
	}
	return 0
}

// terminalSink prints caption text to stdout, suppressing repeats.
type terminalSink struct {
	mu   sync.Mutex
	last map[string]string
}

func (s *terminalSink) SetTranscript(text string, _ []render.Span) {
	s.print("", text)
}

func (s *terminalSink) SetTranslation(text string, _ []render.Span) {
	s.print("[translated] ", text)
}

func (s *terminalSink) print(prefix, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		s.last = make(map[string]string)
	}
	if text == "" || text == s.last[prefix] {
		return
	}
	s.last[prefix] = text
	fmt.Printf("%s%s\n", prefix, text)
}
