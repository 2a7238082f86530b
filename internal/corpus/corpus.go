// Package corpus reads plain-text training files into the texts consumed by
// tokenizer.BuildVocab.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoFiles is returned when LoadFiles is called without paths.
var ErrNoFiles = errors.New("no corpus files given")

// NormalizeNewlines converts CRLF and bare CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// SplitLines returns the lines of s that contain something besides
// whitespace. Line content is not trimmed.
func SplitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(NormalizeNewlines(s), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ReadLines reads r fully and returns its non-blank lines.
func ReadLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return SplitLines(string(data)), nil
}

// LoadFiles reads every path in order and concatenates their lines.
func LoadFiles(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	var texts []string
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open corpus %q: %w", p, err)
		}
		lines, err := ReadLines(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		texts = append(texts, lines...)
	}
	return texts, nil
}
