package logger

import (
	"io"
	"os"
	"strings"
	"testing"
)

// captureOutput re-initializes the logger against a pipe, runs fn, and
// returns everything written. Init snapshots os.Stdout, so the swap has to
// happen before Init is called.
func captureOutput(t *testing.T, level string, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w

	Init(level)
	fn()

	w.Close()
	os.Stdout = orig
	Init("info")

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured output: %v", err)
	}
	return string(out)
}

func TestEventHelpers(t *testing.T) {
	out := captureOutput(t, "info", func() {
		Info().Str("tenant_id", "acme").Msg("info event")
		Warn().Msg("warn event")
		Error().Msg("error event")
	})

	for _, want := range []string{
		`"level":"info"`, "info event", `"tenant_id":"acme"`,
		`"level":"warn"`, "warn event",
		`"level":"error"`, "error event",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	out := captureOutput(t, "error", func() {
		Info().Msg("suppressed info")
		Warnf("suppressed warn %d", 1)
		Errorf("kept error %d", 2)
	})

	if strings.Contains(out, "suppressed info") || strings.Contains(out, "suppressed warn") {
		t.Errorf("events below error level should be suppressed:\n%s", out)
	}
	if !strings.Contains(out, "kept error 2") {
		t.Errorf("error event missing from output:\n%s", out)
	}
}

func TestWith(t *testing.T) {
	out := captureOutput(t, "info", func() {
		log := With("retention")
		log.Info().Msg("tagged event")
	})

	if !strings.Contains(out, `"component":"retention"`) {
		t.Errorf("component field missing:\n%s", out)
	}
}
