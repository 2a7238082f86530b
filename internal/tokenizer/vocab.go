package tokenizer

import (
	"sort"
	"strings"
)

// Vocabulary is an immutable bidirectional mapping between token strings and
// contiguous ids starting at 0.
type Vocabulary struct {
	toID   map[string]int
	tokens []string
}

// NewVocabulary assigns ids 0..len(entries)-1 in order. Empty entries are
// skipped. A repeated entry occupies every position it appears at; lookups by
// string return its last id.
func NewVocabulary(entries []string) *Vocabulary {
	v := &Vocabulary{
		toID:   make(map[string]int, len(entries)),
		tokens: make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		if e == "" {
			continue
		}
		v.add(e)
	}
	return v
}

func (v *Vocabulary) add(tok string) {
	v.toID[tok] = len(v.tokens)
	v.tokens = append(v.tokens, tok)
}

func (v *Vocabulary) has(tok string) bool {
	_, ok := v.toID[tok]
	return ok
}

// Size returns the number of ids.
func (v *Vocabulary) Size() int { return len(v.tokens) }

// ID looks up tok.
func (v *Vocabulary) ID(tok string) (int, bool) {
	id, ok := v.toID[tok]
	return id, ok
}

// Token returns the string for id.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Tokens returns the entries in id order.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

// LoadVocab installs a vocabulary from lines in id order, replacing any
// previous one. Trailing whitespace is stripped and blank lines are dropped;
// leading and internal whitespace is kept.
func (t *Tokenizer) LoadVocab(lines []string) *Tokenizer {
	entries := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\r\n")
		if l != "" {
			entries = append(entries, l)
		}
	}
	return t.InstallVocab(NewVocabulary(entries))
}

// InstallVocab replaces the vocabulary with v and re-resolves the special
// token ids. A nil v removes the vocabulary.
func (t *Tokenizer) InstallVocab(v *Vocabulary) *Tokenizer {
	t.vocab = v
	t.resolveSpecials()
	return t
}

// BuildOptions bounds a vocabulary built from a corpus.
type BuildOptions struct {
	// MinFrequency drops tokens seen fewer times.
	MinFrequency int
	// MaxSize caps the total vocabulary size. The four marker tokens are
	// always placed and leave MaxSize-4 slots for regular tokens.
	MaxSize int
}

// DefaultBuildOptions keeps every token up to a 50000 entry vocabulary.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{MinFrequency: 1, MaxSize: 50000}
}

type tokenCount struct {
	token string
	count int
}

// BuildVocab counts the tokens of texts under the current configuration and
// installs a vocabulary of the marker tokens (pad, unk, cls, sep) followed by
// the most frequent tokens. Ties keep first-occurrence order.
func (t *Tokenizer) BuildVocab(texts []string, opts BuildOptions) *Tokenizer {
	index := make(map[string]int)
	var counts []tokenCount
	for _, text := range texts {
		for _, tok := range t.Tokenize(text) {
			if i, ok := index[tok]; ok {
				counts[i].count++
				continue
			}
			index[tok] = len(counts)
			counts = append(counts, tokenCount{token: tok, count: 1})
		}
	}

	kept := counts[:0]
	for _, tc := range counts {
		if tc.count >= opts.MinFrequency {
			kept = append(kept, tc)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].count > kept[j].count
	})

	specials := t.specials.buildOrder()
	v := &Vocabulary{
		toID: make(map[string]int, len(kept)+len(specials)),
	}
	for _, s := range specials {
		if s != "" && !v.has(s) {
			v.add(s)
		}
	}

	limit := opts.MaxSize - len(specials)
	added := 0
	for _, tc := range kept {
		if added >= limit {
			break
		}
		if v.has(tc.token) {
			continue
		}
		v.add(tc.token)
		added++
	}

	return t.InstallVocab(v)
}
