package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLog_WritesOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetEnabled(false)

	SetEnabled(false)
	Log("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output while disabled, got %q", buf.String())
	}

	SetEnabled(true)
	Log("shown %d", 2)
	LogIf(false, "skipped")
	LogTiming("layout", 3*time.Millisecond)
	LogEnterExit("drop")()

	out := buf.String()
	for _, want := range []string{"shown 2", "layout took 3ms", "-> drop", "<- drop"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("expected LogIf(false) to be silent")
	}
}
