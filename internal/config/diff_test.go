package config_test

import (
	"testing"

	"github.com/Dadangdut33/speech-translate/internal/config"
)

func TestCompareNoChange(t *testing.T) {
	t.Parallel()

	a, b := config.Default(), config.Default()
	if d := config.Compare(a, b); !d.Empty() {
		t.Fatalf("identical configs produced diff: %+v", d)
	}
}

func TestCompareSections(t *testing.T) {
	t.Parallel()

	t.Run("log level", func(t *testing.T) {
		t.Parallel()

		a, b := config.Default(), config.Default()
		b.LogLevel = config.LogDebug
		d := config.Compare(a, b)
		if !d.LogLevelChanged || d.NewLogLevel != config.LogDebug {
			t.Fatalf("diff = %+v, want log level change to debug", d)
		}
		if d.NextSessionOnly() {
			t.Error("log level change should not require a new session")
		}
	})

	t.Run("source", func(t *testing.T) {
		t.Parallel()

		a, b := config.Default(), config.Default()
		b.Mic.Segment.TranscribeRateMS = 1000
		d := config.Compare(a, b)
		if !d.SourcesChanged {
			t.Fatalf("diff = %+v, want SourcesChanged", d)
		}
		if !d.NextSessionOnly() {
			t.Error("source change should be next-session only")
		}
	})

	t.Run("recognition", func(t *testing.T) {
		t.Parallel()

		a, b := config.Default(), config.Default()
		b.Recognition.Model = "/models/other.bin"
		d := config.Compare(a, b)
		if !d.RecognitionChanged || !d.NextSessionOnly() {
			t.Fatalf("diff = %+v, want next-session recognition change", d)
		}
	})

	t.Run("render", func(t *testing.T) {
		t.Parallel()

		a, b := config.Default(), config.Default()
		b.Render.MaxSentences = 9
		d := config.Compare(a, b)
		if !d.RenderChanged {
			t.Fatalf("diff = %+v, want RenderChanged", d)
		}
		if d.NextSessionOnly() {
			t.Error("render change applies immediately")
		}
	})

	t.Run("translation", func(t *testing.T) {
		t.Parallel()

		a, b := config.Default(), config.Default()
		b.Translation.Proxies = []string{"http://proxy:8080"}
		d := config.Compare(a, b)
		if !d.TranslationChanged {
			t.Fatalf("diff = %+v, want TranslationChanged", d)
		}
	})
}
