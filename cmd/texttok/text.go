package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newTokenizeCmd() *cobra.Command {
	var count bool

	cmd := &cobra.Command{
		Use:   "tokenize [text...]",
		Short: "Split text into tokens, one per line",
		Long:  "Split text into tokens. Reads stdin when no text is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			tok := cfg.Tokenizer.NewTokenizer()
			out := cmd.OutOrStdout()
			if count {
				_, err = fmt.Fprintln(out, tok.CountTokens(text))
				return err
			}
			for _, t := range tok.Tokenize(text) {
				if _, err := fmt.Fprintln(out, t); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&count, "count", false, "Print only the number of tokens")

	return cmd
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [text...]",
		Short: "Print the token ids of text",
		Long: "Print the vocabulary ids of the tokens of text, space separated. " +
			"Without a vocabulary file the ids are token positions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			tok, err := loadEngine(cfg, false)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatIDs(tok.Encode(text)))
			return err
		},
	}
}

func newSequenceCmd() *cobra.Command {
	var noSpecial bool

	cmd := &cobra.Command{
		Use:   "sequence [text...]",
		Short: "Print a fixed-length model input for text",
		Long: "Encode text as [CLS] ids [SEP] truncated to --max-length. " +
			"--no-special drops the markers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			tok, err := loadEngine(cfg, !noSpecial)
			if err != nil {
				return err
			}
			ids := tok.EncodeSequence(text, cfg.Tokenizer.MaxLength, !noSpecial)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatIDs(ids))
			return err
		},
	}

	cmd.Flags().BoolVar(&noSpecial, "no-special", false, "Do not add cls/sep markers")

	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <id>...",
		Short: "Turn token ids back into text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			tok, err := loadEngine(cfg, true)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.Decode(ids))
			return err
		},
	}
}

// parseIDs accepts ids as separate arguments or comma separated lists.
func parseIDs(args []string) ([]int, error) {
	var ids []int
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q: %w", field, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
