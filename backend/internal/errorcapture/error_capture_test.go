package errorcapture

import (
	"bytes"
	"testing"
)

func TestParseKlogSeverity(t *testing.T) {
	if sev, ok := parseKlogSeverity("E0102 15:04:05.000 something failed"); !ok || sev != 'E' {
		t.Fatalf("expected E severity, got %c ok=%v", sev, ok)
	}
	if _, ok := parseKlogSeverity("plain text line"); ok {
		t.Fatal("expected non-klog line to not parse")
	}
	if _, ok := parseKlogSeverity("E"); ok {
		t.Fatal("expected short line to not parse")
	}
}

func TestIsAuthRelatedUsesWordBoundaries(t *testing.T) {
	if !isAuthRelated("the token has expired") {
		t.Fatal("expected token expiry to be auth related")
	}
	if isAuthRelated("listing podidentityassociations") {
		t.Fatal("expected resource name not to match token pattern")
	}
}

func TestTrimBufferKeepsNewestBytes(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.WriteString("0123456789")

	trimBuffer(buf, 8, 4)
	if buf.String() != "6789" {
		t.Fatalf("expected newest 4 bytes kept, got %q", buf.String())
	}

	trimBuffer(buf, 8, 4)
	if buf.String() != "6789" {
		t.Fatalf("expected buffer under limit untouched, got %q", buf.String())
	}
}

func TestEmitAuthErrorsFiltersSeverityAndTopic(t *testing.T) {
	var emitted []string
	prev := eventEmitter
	eventEmitter = func(msg string) { emitted = append(emitted, msg) }
	t.Cleanup(func() { eventEmitter = prev })

	c := &Capture{buffer: &bytes.Buffer{}}
	c.emitAuthErrors("I0102 15:04:05.000 token refreshed\nE0102 15:04:05.000 token expired\nordinary line\n")

	if len(emitted) != 1 || emitted[0] != "E0102 15:04:05.000 token expired" {
		t.Fatalf("unexpected emitted lines: %v", emitted)
	}
}

func TestEmitToLogSinkDerivesLevels(t *testing.T) {
	var levels []string
	prev := logSink
	logSink = func(level, _ string) { levels = append(levels, level) }
	t.Cleanup(func() { logSink = prev })

	c := &Capture{buffer: &bytes.Buffer{}}
	c.emitToLogSink([]byte("E0102 1 boom\nW0102 1 careful\nI0102 1 fine\nD0102 1 detail\n"))

	want := []string{"error", "warn", "info", "debug"}
	if len(levels) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), levels)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("line %d: expected level %s, got %s", i, want[i], levels[i])
		}
	}
}
