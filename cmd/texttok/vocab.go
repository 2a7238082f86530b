package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/example/go-text-tokenizer/internal/corpus"
	"github.com/example/go-text-tokenizer/internal/tokenizer"
	"github.com/example/go-text-tokenizer/internal/vocabfile"
)

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build and inspect vocabulary files",
	}

	cmd.AddCommand(newVocabBuildCmd())
	cmd.AddCommand(newVocabInfoCmd())

	return cmd
}

func newVocabBuildCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "build <corpus-file>...",
		Short: "Build a vocabulary from text files",
		Long: "Count tokens over every non-blank line of the corpus files and write " +
			"the marker tokens followed by the most frequent tokens, one per line.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Paths.VocabPath
			}

			lines, err := corpus.LoadFiles(args...)
			if err != nil {
				return err
			}

			tok := cfg.Tokenizer.NewTokenizer().BuildVocab(lines, cfg.Vocab.BuildOptions())
			if err := vocabfile.Save(out, tok.Vocabulary().Tokens()); err != nil {
				return err
			}

			slog.Info("vocabulary built",
				slog.Int("files", len(args)),
				slog.Int("lines", len(lines)),
				slog.Int("size", tok.VocabSize()),
				slog.String("out", out),
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s entries to %s\n",
				humanize.Comma(int64(tok.VocabSize())), out)
			return err
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output vocabulary path (default: --vocab)")

	return cmd
}

func newVocabInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show vocabulary size and special token ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			tok, err := loadEngine(cfg, true)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "path:     %s\n", cfg.Paths.VocabPath)
			if st, err := os.Stat(cfg.Paths.VocabPath); err == nil {
				fmt.Fprintf(w, "file:     %s\n", humanize.Bytes(uint64(st.Size())))
			}
			fmt.Fprintf(w, "entries:  %s\n", humanize.Comma(int64(tok.VocabSize())))

			sp := tok.SpecialTokens()
			for _, k := range tokenizer.SpecialKinds() {
				if id, ok := tok.SpecialID(k); ok {
					fmt.Fprintf(w, "%-9s %s = %d\n", k.String()+":", sp.Get(k), id)
				} else {
					fmt.Fprintf(w, "%-9s %s absent\n", k.String()+":", sp.Get(k))
				}
			}
			return nil
		},
	}
}
