package testutil

import (
	"bytes"
	"os"
	"slices"
	"testing"
)

// AssertVocabFile checks that path holds a well-formed vocabulary file with
// exactly the entries want: one entry per line, newline terminated, no blank
// lines and no trailing whitespace.
func AssertVocabFile(tb testing.TB, path string, want []string) {
	tb.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("vocab: %v", err)
	}

	if len(data) == 0 {
		tb.Fatalf("vocab %s: file is empty", path)
	}

	if data[len(data)-1] != '\n' {
		tb.Fatalf("vocab %s: missing trailing newline", path)
	}

	lines := bytes.Split(data[:len(data)-1], []byte("\n"))
	got := make([]string, len(lines))
	for i, l := range lines {
		if len(l) == 0 {
			tb.Fatalf("vocab %s: blank line %d", path, i+1)
			continue
		}
		if c := l[len(l)-1]; c == ' ' || c == '\t' || c == '\r' {
			tb.Fatalf("vocab %s: trailing whitespace on line %d", path, i+1)
		}
		got[i] = string(l)
	}

	if !slices.Equal(got, want) {
		tb.Fatalf("vocab %s: entries = %q, want %q", path, got, want)
	}
}
