// Package bench provides benchmarking primitives for the texttok bench command.
package bench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultText is the sentence repeated to build the benchmark input.
const DefaultText = "Natural language processing is a subfield of linguistics, computer science, " +
	"and artificial intelligence concerned with the interactions between computers and human language."

// Engine is the part of the tokenizer exercised by a run.
type Engine interface {
	Tokenize(text string) []string
	Encode(text string) []int
	Decode(ids []int) string
}

// BuildText joins repeat copies of base, each followed by a space.
func BuildText(base string, repeat int) string {
	if repeat < 1 {
		repeat = 1
	}
	return strings.Repeat(base+" ", repeat)
}

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timings of one tokenize/encode/decode pass.
type RunResult struct {
	Index    int
	Cold     bool // true for the first run
	Tokenize time.Duration
	Encode   time.Duration
	Decode   time.Duration
	Tokens   int
	Bytes    int
}

// Total is the wall time of all three stages.
func (r RunResult) Total() time.Duration {
	return r.Tokenize + r.Encode + r.Decode
}

// Throughput is the input size processed per second over Total, in MB/s.
func (r RunResult) Throughput() float64 {
	return Throughput(r.Bytes, r.Total())
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// An empty slice yields zero Stats.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// Totals returns the Total of every run.
func Totals(runs []RunResult) []time.Duration {
	out := make([]time.Duration, len(runs))
	for i, r := range runs {
		out[i] = r.Total()
	}
	return out
}

// Throughput returns MiB processed per second.
// Returns 0 if d is zero to avoid division by zero.
func Throughput(bytes int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(bytes) / (1024 * 1024) / d.Seconds()
}

// MeanThroughput averages Throughput over runs.
func MeanThroughput(runs []RunResult) float64 {
	if len(runs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range runs {
		sum += r.Throughput()
	}
	return sum / float64(len(runs))
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Run times runs passes of Tokenize, Encode and Decode over text.
// The context is checked between runs.
func Run(ctx context.Context, eng Engine, text string, runs int) ([]RunResult, error) {
	if runs < 1 {
		return nil, errors.New("runs must be at least 1")
	}

	results := make([]RunResult, 0, runs)
	for i := range runs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}

		start := time.Now()
		tokens := eng.Tokenize(text)
		tokenized := time.Now()
		ids := eng.Encode(text)
		encoded := time.Now()
		_ = eng.Decode(ids)
		decoded := time.Now()

		results = append(results, RunResult{
			Index:    i,
			Cold:     i == 0,
			Tokenize: tokenized.Sub(start),
			Encode:   encoded.Sub(tokenized),
			Decode:   decoded.Sub(encoded),
			Tokens:   len(tokens),
			Bytes:    len(text),
		})
	}
	return results, nil
}

// ---------------------------------------------------------------------------
// Throughput gate
// ---------------------------------------------------------------------------

// CheckThroughputThreshold returns an error if mbps < minimum.
// A minimum of 0 disables the gate.
func CheckThroughputThreshold(mbps, minimum float64) error {
	if minimum <= 0 {
		return nil
	}
	if mbps < minimum {
		return fmt.Errorf("mean throughput %.2f MB/s below threshold %.2f MB/s", mbps, minimum)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e3
}

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	if len(runs) > 0 {
		fmt.Fprintf(sb, "input: %s, %s tokens\n",
			humanize.Bytes(uint64(runs[0].Bytes)),
			humanize.Comma(int64(runs[0].Tokens)),
		)
	}

	fmt.Fprintf(sb, "%-5s  %-5s  %12s  %12s  %12s  %8s\n", "Run", "Cold", "Tokenize(us)", "Encode(us)", "Decode(us)", "MB/s")
	fmt.Fprintln(sb, strings.Repeat("-", 66))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %12.1f  %12.1f  %12.1f  %8.2f\n",
			r.Index+1,
			cold,
			micros(r.Tokenize),
			micros(r.Encode),
			micros(r.Decode),
			r.Throughput(),
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 66))
	fmt.Fprintf(sb, "total %10.1f us (min)\n", micros(stats.Min))
	fmt.Fprintf(sb, "total %10.1f us (mean)\n", micros(stats.Mean))
	fmt.Fprintf(sb, "total %10.1f us (max)\n", micros(stats.Max))

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	TokenizeUS float64 `json:"tokenize_us"`
	EncodeUS   float64 `json:"encode_us"`
	DecodeUS   float64 `json:"decode_us"`
	Tokens     int     `json:"tokens"`
	Bytes      int     `json:"bytes"`
	MBPerSec   float64 `json:"mb_per_sec"`
}

type jsonStats struct {
	MinUS          float64 `json:"min_us"`
	MeanUS         float64 `json:"mean_us"`
	MaxUS          float64 `json:"max_us"`
	MeanThroughput float64 `json:"mean_mb_per_sec"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinUS:          micros(stats.Min),
			MeanUS:         micros(stats.Mean),
			MaxUS:          micros(stats.Max),
			MeanThroughput: MeanThroughput(runs),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:      r.Index,
			Cold:       r.Cold,
			TokenizeUS: micros(r.Tokenize),
			EncodeUS:   micros(r.Encode),
			DecodeUS:   micros(r.Decode),
			Tokens:     r.Tokens,
			Bytes:      r.Bytes,
			MBPerSec:   r.Throughput(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
