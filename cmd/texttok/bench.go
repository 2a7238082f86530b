package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/go-text-tokenizer/internal/bench"
)

func newBenchCmd() *cobra.Command {
	var (
		text          string
		repeat        int
		runs          int
		format        string
		minThroughput float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark tokenize, encode and decode throughput",
		Long: "Time tokenize, encode and decode over a repeated sample text. Without " +
			"a vocabulary file one is built from the sample first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if runs < 1 {
				return errors.New("--runs must be at least 1")
			}
			if repeat < 1 {
				return errors.New("--repeat must be at least 1")
			}
			if format != "table" && format != "json" {
				return errors.New("--format must be 'table' or 'json'")
			}

			tok, err := loadEngine(cfg, false)
			if err != nil {
				return err
			}

			input := bench.BuildText(text, repeat)
			if !tok.HasVocab() {
				tok.BuildVocab([]string{input}, cfg.Vocab.BuildOptions())
				slog.Debug("bench vocabulary built from sample", slog.Int("size", tok.VocabSize()))
			}

			results, err := bench.Run(cmd.Context(), tok, input, runs)
			if err != nil {
				return err
			}
			stats := bench.ComputeStats(bench.Totals(results))

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				bench.FormatJSON(results, stats, out)
			default:
				bench.FormatTable(results, stats, out)
			}

			if err := bench.CheckThroughputThreshold(bench.MeanThroughput(results), minThroughput); err != nil {
				return fmt.Errorf("bench: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", bench.DefaultText, "Sample text repeated to build the input")
	cmd.Flags().IntVar(&repeat, "repeat", 1000, "Number of copies of the sample text")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of benchmark runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&minThroughput, "min-throughput", 0, "Exit non-zero if mean MB/s falls below this value (0 = disabled)")

	return cmd
}
