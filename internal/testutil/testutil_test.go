package testutil_test

import (
	"slices"
	"testing"

	"github.com/example/go-text-tokenizer/internal/corpus"
	"github.com/example/go-text-tokenizer/internal/testutil"
	"github.com/example/go-text-tokenizer/internal/vocabfile"
)

func TestWriteVocab_Default(t *testing.T) {
	path := testutil.WriteVocab(t)

	got, err := vocabfile.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(got, testutil.DefaultVocab) {
		t.Errorf("entries = %q, want DefaultVocab", got)
	}
	testutil.AssertVocabFile(t, path, testutil.DefaultVocab)
}

func TestWriteVocab_Custom(t *testing.T) {
	path := testutil.WriteVocab(t, "a", "b")
	testutil.AssertVocabFile(t, path, []string{"a", "b"})
}

func TestWriteCorpus_ReadableByLoadFiles(t *testing.T) {
	path := testutil.WriteCorpus(t, "first line", "", "second line")

	lines, err := corpus.LoadFiles(path)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	want := []string{"first line", "second line"}
	if !slices.Equal(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestAssertVocabFile_DetectsBlankLine(t *testing.T) {
	path := testutil.WriteFile(t, "vocab.txt", "a\n\nb\n")

	failed := false
	fakeT := &failTracker{TB: t, onFail: func() { failed = true }}
	testutil.AssertVocabFile(fakeT, path, []string{"a", "b"})
	if !failed {
		t.Error("expected AssertVocabFile to fail on a blank line")
	}
}

func TestRequireCorpus_SkipsWhenUnset(t *testing.T) {
	t.Setenv(testutil.CorpusEnv, "")

	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	if got := testutil.RequireCorpus(fakeT); got != "" {
		t.Errorf("RequireCorpus = %q, want empty", got)
	}
	if !skipped {
		t.Error("expected RequireCorpus to skip when the env var is unset")
	}
}

func TestRequireCorpus_SkipsWhenMissing(t *testing.T) {
	t.Setenv(testutil.CorpusEnv, "/nonexistent/corpus.txt")

	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireCorpus(fakeT)
	if !skipped {
		t.Error("expected RequireCorpus to skip when the file is absent")
	}
}

func TestRequireCorpus_ReturnsPath(t *testing.T) {
	path := testutil.WriteCorpus(t, "text")
	t.Setenv(testutil.CorpusEnv, path)

	if got := testutil.RequireCorpus(t); got != path {
		t.Errorf("RequireCorpus = %q, want %q", got, path)
	}
}

// skipTracker is a minimal testing.TB implementation that intercepts Skip calls.
type skipTracker struct {
	testing.TB
	onSkip func()
}

func (s *skipTracker) Helper() {}

func (s *skipTracker) Skipf(_ string, _ ...any) {
	s.onSkip()
	// Do NOT call s.TB.Skip; that would actually skip the outer test.
}

// failTracker intercepts Fatalf so assertion helpers can be tested.
type failTracker struct {
	testing.TB
	onFail func()
}

func (f *failTracker) Helper() {}

func (f *failTracker) Fatalf(_ string, _ ...any) {
	f.onFail()
	// Return without stopping; the helper under test keeps running.
}
