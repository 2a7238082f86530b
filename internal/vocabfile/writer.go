package vocabfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Write emits tokens one per line in id order.
func Write(w io.Writer, tokens []string) error {
	if len(tokens) == 0 {
		return ErrEmptyVocab
	}

	bw := bufio.NewWriter(w)
	for i, tok := range tokens {
		if tok == "" || strings.ContainsAny(tok, "\r\n") {
			return fmt.Errorf("vocabfile: entry %d (%q) cannot be stored on one line", i, tok)
		}
		if _, err := bw.WriteString(tok); err != nil {
			return fmt.Errorf("vocabfile: write: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("vocabfile: write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("vocabfile: flush: %w", err)
	}
	return nil
}

// Save writes tokens to path, replacing any existing file.
func Save(path string, tokens []string) error {
	if path == "" {
		return ErrEmptyPath
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vocabfile: create %q: %w", path, err)
	}

	if err := Write(f, tokens); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("vocabfile: close %q: %w", path, err)
	}
	return nil
}
