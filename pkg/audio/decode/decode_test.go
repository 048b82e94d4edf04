package decode

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
)

func writeWAV(t *testing.T, dir string, rate, channels int, dur time.Duration) string {
	t.Helper()
	n := int(float64(rate) * dur.Seconds())
	pcm := make([]byte, n*channels*2)
	for i := 0; i < n; i++ {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint16(pcm[(i*channels+c)*2:], uint16(v))
		}
	}
	path := filepath.Join(dir, "in.wav")
	if err := os.WriteFile(path, audio.EncodeWAV(pcm, rate, channels), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileWAV(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, t.TempDir(), 44100, 2, 200*time.Millisecond)

	got, err := File(context.Background(), path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got.SampleRate != audio.RecognitionRate || got.Channels != 1 {
		t.Fatalf("got %d ch @ %d Hz, want mono 16 kHz", got.Channels, got.SampleRate)
	}
	wantSamples := audio.RecognitionRate / 5 // 200 ms
	if n := got.Samples(); n < wantSamples-2 || n > wantSamples+2 {
		t.Fatalf("got %d samples, want about %d", n, wantSamples)
	}
	if got.DBFS >= 0 || got.DBFS <= audio.SilenceFloorDB {
		t.Fatalf("loudness %f dBFS implausible for a tone", got.DBFS)
	}
}

func TestFileUnsupported(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "in.xyz")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := File(context.Background(), path); err == nil {
		t.Fatal("expected error for unknown format without ffmpeg")
	}
}
