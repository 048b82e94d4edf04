package session_test

import (
	"testing"

	"github.com/Dadangdut33/speech-translate/internal/session"
)

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state session.State
		want  string
	}{
		{session.StateIdle, "idle"},
		{session.StateLoading, "loading"},
		{session.StateRunning, "running"},
		{session.StatePaused, "paused"},
		{session.StateStopping, "stopping"},
		{session.State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
