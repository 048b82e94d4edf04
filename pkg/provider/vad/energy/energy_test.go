package energy

import (
	"testing"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
	"github.com/Dadangdut33/speech-translate/pkg/provider/vad"
)

func TestGateThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sensitivity int
		dbfs        float64
		want        bool
	}{
		{name: "quiet frame rejected at high sensitivity", sensitivity: 3, dbfs: -40, want: false},
		{name: "quiet frame accepted at low sensitivity", sensitivity: 0, dbfs: -50, want: true},
		{name: "loud frame accepted everywhere", sensitivity: 3, dbfs: -10, want: true},
		{name: "silence floor rejected everywhere", sensitivity: 0, dbfs: audio.SilenceFloorDB, want: false},
		{name: "sensitivity clamped above", sensitivity: 9, dbfs: -35, want: false},
		{name: "sensitivity clamped below", sensitivity: -2, dbfs: -50, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g := New(vad.Config{SampleRate: 16000, Sensitivity: tc.sensitivity})
			got, err := g.IsSpeech(audio.Conditioned{DBFS: tc.dbfs})
			if err != nil {
				t.Fatalf("IsSpeech: %v", err)
			}
			if got != tc.want {
				t.Fatalf("IsSpeech(%f dBFS) = %v, want %v", tc.dbfs, got, tc.want)
			}
		})
	}
}

func TestGateExplicitThreshold(t *testing.T) {
	t.Parallel()

	g := NewWithThreshold(-20)
	if got, _ := g.IsSpeech(audio.Conditioned{DBFS: -19}); !got {
		t.Fatal("frame above explicit threshold should be speech")
	}
	if got, _ := g.IsSpeech(audio.Conditioned{DBFS: -21}); got {
		t.Fatal("frame below explicit threshold should not be speech")
	}
}
