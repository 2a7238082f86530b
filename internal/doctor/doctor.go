// Package doctor provides environment preflight checks for texttok.
package doctor

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/example/go-text-tokenizer/internal/tokenizer"
	"github.com/example/go-text-tokenizer/internal/vocabfile"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// minGoMinor is the oldest supported go1.N runtime.
const minGoMinor = 22

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// LoadFunc reads a vocabulary file.
type LoadFunc func(path string) ([]string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// GoVersion returns the runtime version (e.g. "go1.25.0"). Nil uses runtime.Version.
	GoVersion VersionFunc
	// VocabPath is the vocabulary file to verify. Empty skips the vocabulary checks.
	VocabPath string
	// LoadVocab reads VocabPath. Nil uses vocabfile.Load.
	LoadVocab LoadFunc
	// SpecialTokens lists the marker strings expected in the vocabulary.
	SpecialTokens tokenizer.SpecialTokens
	// MaxLength is the configured sequence length.
	MaxLength int
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- Go runtime -------------------------------------------------------
	goVersion := cfg.GoVersion
	if goVersion == nil {
		goVersion = func() (string, error) { return runtime.Version(), nil }
	}
	ver, err := goVersion()
	if err != nil {
		res.fail(fmt.Sprintf("go runtime: %v", err))
		fmt.Fprintf(w, "%s go runtime: unavailable (%v)\n", FailMark, err)
	} else if verErr := checkGoVersion(ver); verErr != nil {
		res.fail(fmt.Sprintf("go runtime: %v", verErr))
		fmt.Fprintf(w, "%s go runtime %s: %v\n", FailMark, ver, verErr)
	} else {
		fmt.Fprintf(w, "%s go runtime: %s\n", PassMark, ver)
	}

	// ---- max length -------------------------------------------------------
	if cfg.MaxLength < 2 {
		res.fail(fmt.Sprintf("max_length %d leaves no room between cls and sep", cfg.MaxLength))
		fmt.Fprintf(w, "%s max_length: %d (want >= 2)\n", FailMark, cfg.MaxLength)
	} else {
		fmt.Fprintf(w, "%s max_length: %d\n", PassMark, cfg.MaxLength)
	}

	// ---- vocabulary file --------------------------------------------------
	if cfg.VocabPath == "" {
		fmt.Fprintf(w, "%s vocabulary: skipped (no path configured)\n", PassMark)
		return res
	}

	load := cfg.LoadVocab
	if load == nil {
		load = vocabfile.Load
	}
	tokens, err := load(cfg.VocabPath)
	if err != nil {
		res.fail(fmt.Sprintf("vocabulary %q: %v", cfg.VocabPath, err))
		fmt.Fprintf(w, "%s vocabulary %s: unreadable (%v)\n", FailMark, cfg.VocabPath, err)
		return res
	}
	if len(tokens) == 0 {
		res.fail(fmt.Sprintf("vocabulary %q: no entries", cfg.VocabPath))
		fmt.Fprintf(w, "%s vocabulary %s: empty\n", FailMark, cfg.VocabPath)
		return res
	}
	fmt.Fprintf(w, "%s vocabulary: %s (%s entries)\n", PassMark, cfg.VocabPath, humanize.Comma(int64(len(tokens))))

	// ---- special tokens ---------------------------------------------------
	index := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		if _, ok := index[tok]; !ok {
			index[tok] = i
		}
	}
	for _, k := range tokenizer.SpecialKinds() {
		token := cfg.SpecialTokens.Get(k)
		if id, ok := index[token]; ok {
			fmt.Fprintf(w, "%s special token %s: %s (line %d)\n", PassMark, k, token, id+1)
			continue
		}
		res.fail(fmt.Sprintf("special token %s %q missing from vocabulary", k, token))
		fmt.Fprintf(w, "%s special token %s: %s not found\n", FailMark, k, token)
	}

	// ---- duplicates -------------------------------------------------------
	rep := vocabfile.Inspect(tokens)
	if len(rep.Duplicates) == 0 {
		fmt.Fprintf(w, "%s duplicates: none\n", PassMark)
		return res
	}
	dups := make([]string, 0, len(rep.Duplicates))
	for tok := range rep.Duplicates {
		dups = append(dups, tok)
	}
	sort.Strings(dups)
	for _, tok := range dups {
		lines := make([]string, len(rep.Duplicates[tok]))
		for i, idx := range rep.Duplicates[tok] {
			lines[i] = strconv.Itoa(idx + 1)
		}
		res.fail(fmt.Sprintf("duplicate entry %q on lines %s", tok, strings.Join(lines, ", ")))
		fmt.Fprintf(w, "%s duplicate entry %q: lines %s\n", FailMark, tok, strings.Join(lines, ", "))
	}

	return res
}

// checkGoVersion returns an error if ver is older than go1.minGoMinor.
// ver is expected to be a string like "go1.25.0"; development builds such as
// "devel go1.26-abcdef" are accepted.
func checkGoVersion(ver string) error {
	if strings.HasPrefix(ver, "devel") {
		return nil
	}
	major, minor, err := parseMajorMinor(strings.TrimPrefix(ver, "go"))
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", ver, err)
	}
	if major != 1 {
		return fmt.Errorf("requires Go 1, got %d", major)
	}
	if minor < minGoMinor {
		return fmt.Errorf("requires Go >=1.%d, got 1.%d", minGoMinor, minor)
	}
	return nil
}

func parseMajorMinor(ver string) (major, minor int, err error) {
	parts := strings.SplitN(ver, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("unexpected version format %q", ver)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad major in %q: %w", ver, err)
	}
	minor, err = strconv.Atoi(leadingDigits(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad minor in %q: %w", ver, err)
	}
	return major, minor, nil
}

// leadingDigits drops pre-release suffixes such as the "rc1" in "25rc1".
func leadingDigits(s string) string {
	for i, c := range s {
		if c < '0' || c > '9' {
			return s[:i]
		}
	}
	return s
}
