// Package vocabfile reads and writes vocabulary text files: one token per
// line in id order, newline terminated, no header and no blank lines.
package vocabfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineBytes bounds a single vocabulary entry.
const maxLineBytes = 1 << 20

var (
	// ErrEmptyPath is returned when a load or save is given an empty path.
	ErrEmptyPath = errors.New("vocabfile: path must not be empty")
	// ErrEmptyVocab is returned when saving a vocabulary without entries.
	ErrEmptyVocab = errors.New("vocabfile: vocabulary is empty")
)

// Read returns the entries of a vocabulary file. Trailing whitespace is
// stripped from each line and blank lines are dropped; leading and internal
// whitespace is kept.
func Read(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var tokens []string
	for sc.Scan() {
		tok := strings.TrimRight(sc.Text(), " \t\r\n")
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vocabfile: read: %w", err)
	}
	return tokens, nil
}

// Load reads the vocabulary file at path.
func Load(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocabfile: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	tokens, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tokens, nil
}

// Report summarizes a loaded vocabulary for diagnostics.
type Report struct {
	Entries int
	// Duplicates maps each repeated entry to every line index it occupies.
	Duplicates map[string][]int
}

// Inspect builds a Report for tokens.
func Inspect(tokens []string) Report {
	seen := make(map[string][]int, len(tokens))
	for i, tok := range tokens {
		seen[tok] = append(seen[tok], i)
	}

	rep := Report{Entries: len(tokens)}
	for tok, idx := range seen {
		if len(idx) < 2 {
			continue
		}
		if rep.Duplicates == nil {
			rep.Duplicates = make(map[string][]int)
		}
		rep.Duplicates[tok] = idx
	}
	return rep
}
