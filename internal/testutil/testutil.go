// Package testutil provides shared fixtures and skip helpers for tests.
//
// Fixture helpers write files under tb.TempDir and fail the test on error.
// Skip helpers call t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    corpus := testutil.RequireCorpus(t)
//	    vocab := testutil.WriteVocab(t, "[PAD]", "[UNK]", "hello")
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-text-tokenizer/internal/vocabfile"
)

// CorpusEnv names a text file used by corpus-driven integration tests.
const CorpusEnv = "TEXTTOK_TEST_CORPUS"

// DefaultVocab is a small vocabulary with the four default markers first.
var DefaultVocab = []string{
	"[PAD]", "[UNK]", "[CLS]", "[SEP]",
	"hello", "world", ",", "!", ".", "this", "is", "a", "test",
}

// WriteVocab saves tokens as a vocabulary file in a fresh temp dir and
// returns its path. With no tokens DefaultVocab is written.
func WriteVocab(tb testing.TB, tokens ...string) string {
	tb.Helper()

	if len(tokens) == 0 {
		tokens = DefaultVocab
	}
	path := filepath.Join(tb.TempDir(), "vocab.txt")
	if err := vocabfile.Save(path, tokens); err != nil {
		tb.Fatalf("write vocab fixture: %v", err)
	}
	return path
}

// WriteFile writes content to name inside a fresh temp dir and returns the
// path. Use it for corpus files and config files.
func WriteFile(tb testing.TB, name, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// WriteCorpus writes lines, newline separated, as corpus.txt.
func WriteCorpus(tb testing.TB, lines ...string) string {
	tb.Helper()
	return WriteFile(tb, "corpus.txt", strings.Join(lines, "\n")+"\n")
}

// RequireCorpus skips the test unless CorpusEnv names a readable file and
// returns that path.
func RequireCorpus(tb testing.TB) string {
	tb.Helper()

	path := os.Getenv(CorpusEnv)
	if path == "" {
		tb.Skipf("no corpus configured; set %s to a text file", CorpusEnv)
		return ""
	}

	// #nosec G703 -- Integration tests intentionally accept explicit env-provided local paths.
	if _, err := os.Stat(path); err != nil {
		tb.Skipf("corpus not found at %s=%q: %v", CorpusEnv, path, err)
		return ""
	}
	return path
}
