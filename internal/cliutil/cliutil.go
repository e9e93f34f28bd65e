// Package cliutil collects small terminal/logging helpers shared by the
// command-line entry point and the assembler's diagnostic output.
package cliutil

import (
	"log"
	"os"
	"sync"

	"golang.org/x/term"
)

// TerminalSize returns the terminal's (columns, lines), probing stdin,
// stdout, and stderr in turn. Falls back to defaultCols/defaultLines
// when none of the three file descriptors are a terminal (e.g. output
// piped to a file or another process).
func TerminalSize(defaultCols, defaultLines int) (cols, lines int) {
	for _, fd := range []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd()} {
		if width, height, err := term.GetSize(int(fd)); err == nil {
			return width, height
		}
	}
	return defaultCols, defaultLines
}

var warnedMessages sync.Map

// WarnOnce logs message at most once per process, regardless of how
// many times it's called with the same text. Used for per-frame
// warnings that would otherwise spam the log once per skipped frame.
func WarnOnce(message string) {
	if _, loaded := warnedMessages.LoadOrStore(message, true); !loaded {
		log.Printf("warning: %s", message)
	}
}

// AnyTrue reports whether any element of values is true.
func AnyTrue(values []bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}
