package cliutil

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestTerminalSize_FallsBackWhenNotATerminal(t *testing.T) {
	// go test's stdin/stdout/stderr are not terminals, so none of the
	// three probed file descriptors should report a size.
	cols, lines := TerminalSize(123, 45)
	if cols != 123 || lines != 45 {
		t.Errorf("expected fallback (123, 45) under a non-terminal test runner, got (%d, %d)", cols, lines)
	}
}

func TestWarnOnce_LogsOnlyFirstCall(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	const message = "this frame's pose is degenerate, skipping"
	WarnOnce(message)
	WarnOnce(message)
	WarnOnce(message)

	got := buf.String()
	count := strings.Count(got, message)
	if count != 1 {
		t.Errorf("expected message logged exactly once, got %d occurrences in: %q", count, got)
	}
}

func TestWarnOnce_DistinctMessagesEachLogOnce(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	WarnOnce("first distinct warning")
	WarnOnce("second distinct warning")

	got := buf.String()
	if !strings.Contains(got, "first distinct warning") {
		t.Error("expected first message to be logged")
	}
	if !strings.Contains(got, "second distinct warning") {
		t.Error("expected second message to be logged")
	}
}

func TestAnyTrue(t *testing.T) {
	cases := []struct {
		name string
		in   []bool
		want bool
	}{
		{"empty", nil, false},
		{"all false", []bool{false, false, false}, false},
		{"one true", []bool{false, true, false}, true},
		{"all true", []bool{true, true}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := AnyTrue(c.in); got != c.want {
				t.Errorf("AnyTrue(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
