package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-text-tokenizer/internal/config"
	"github.com/example/go-text-tokenizer/internal/tokenizer"
	"github.com/example/go-text-tokenizer/internal/vocabfile"
)

// ErrNoVocab is returned by commands that need a vocabulary file when none
// can be found at the configured path.
var ErrNoVocab = errors.New("no vocabulary")

// loadEngine builds the configured tokenizer and installs the vocabulary at
// cfg.Paths.VocabPath. A missing file is an error only when required is set;
// otherwise the tokenizer runs without a vocabulary.
func loadEngine(cfg config.Config, required bool) (*tokenizer.Tokenizer, error) {
	tok := cfg.Tokenizer.NewTokenizer()

	lines, err := vocabfile.Load(cfg.Paths.VocabPath)
	if err == nil && len(lines) == 0 {
		err = fmt.Errorf("%s: %w", cfg.Paths.VocabPath, vocabfile.ErrEmptyVocab)
	}
	switch {
	case err == nil:
		tok.LoadVocab(lines)
		slog.Debug("vocabulary loaded",
			slog.String("path", cfg.Paths.VocabPath),
			slog.Int("size", tok.VocabSize()),
		)
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, vocabfile.ErrEmptyPath),
		errors.Is(err, vocabfile.ErrEmptyVocab):
		if required {
			return nil, fmt.Errorf("%w: %v (run `texttok vocab build` or set --vocab)", ErrNoVocab, err)
		}
		slog.Debug("running without vocabulary", slog.String("path", cfg.Paths.VocabPath))
	default:
		return nil, err
	}
	return tok, nil
}

// inputText joins args with spaces, or reads all of stdin when args is empty.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}
