// Package tokenizer splits raw text into tokens and maps them to integer ids
// from a fixed vocabulary. Splitting is byte based: configurable single-byte
// delimiters, optional ASCII punctuation splitting, and multi-byte UTF-8
// characters that are never split or case folded.
//
// A Tokenizer is not synchronized. Configure it and install a vocabulary
// first; after that every method is read-only and the instance may be shared.
package tokenizer

// NoID marks a special token that is absent from the vocabulary.
const NoID = -1

// InvalidToken is returned by TokenByID for ids outside the vocabulary.
const InvalidToken = "[INVALID]"

// SpecialKind identifies one of the four reserved marker tokens.
type SpecialKind int

const (
	Unk SpecialKind = iota
	Pad
	Cls
	Sep
)

func (k SpecialKind) String() string {
	switch k {
	case Unk:
		return "unk"
	case Pad:
		return "pad"
	case Cls:
		return "cls"
	case Sep:
		return "sep"
	default:
		return "unknown"
	}
}

// SpecialTokens holds the strings used for the reserved marker tokens.
type SpecialTokens struct {
	Unk string
	Pad string
	Cls string
	Sep string
}

// DefaultSpecialTokens returns the BERT-style marker strings.
func DefaultSpecialTokens() SpecialTokens {
	return SpecialTokens{
		Unk: "[UNK]",
		Pad: "[PAD]",
		Cls: "[CLS]",
		Sep: "[SEP]",
	}
}

// SpecialKinds lists every marker kind in display order.
func SpecialKinds() []SpecialKind {
	return []SpecialKind{Unk, Pad, Cls, Sep}
}

// Get returns the marker string for k.
func (s SpecialTokens) Get(k SpecialKind) string {
	switch k {
	case Unk:
		return s.Unk
	case Pad:
		return s.Pad
	case Cls:
		return s.Cls
	default:
		return s.Sep
	}
}

// buildOrder is the order in which BuildVocab places the marker tokens.
func (s SpecialTokens) buildOrder() []string {
	return []string{s.Pad, s.Unk, s.Cls, s.Sep}
}

// Config controls how text is split and normalized.
type Config struct {
	delimiters         [asciiLimit]bool
	Lowercase          bool
	SplitOnPunctuation bool
	KeepPunctuation    bool
}

// DefaultConfig splits on ASCII whitespace only and keeps case.
func DefaultConfig() Config {
	var c Config
	for _, d := range []byte{' ', '\t', '\n', '\r', '\f', '\v'} {
		c.delimiters[d] = true
	}
	return c
}

// WithLowercase returns a copy with ASCII lowercasing set to enable.
func (c Config) WithLowercase(enable bool) Config {
	c.Lowercase = enable
	return c
}

// WithSplitOnPunctuation returns a copy that also splits on ASCII punctuation.
func (c Config) WithSplitOnPunctuation(enable bool) Config {
	c.SplitOnPunctuation = enable
	return c
}

// WithKeepPunctuation returns a copy that emits punctuation bytes found while
// splitting as single-character tokens.
func (c Config) WithKeepPunctuation(enable bool) Config {
	c.KeepPunctuation = enable
	return c
}

// WithDelimiter returns a copy with d added to the delimiter set.
// Bytes outside ASCII are ignored: the scanner never classifies them.
func (c Config) WithDelimiter(d byte) Config {
	if d < asciiLimit {
		c.delimiters[d] = true
	}
	return c
}

// WithDelimiters adds every byte of delims.
func (c Config) WithDelimiters(delims string) Config {
	for i := 0; i < len(delims); i++ {
		c = c.WithDelimiter(delims[i])
	}
	return c
}

// IsDelimiter reports whether b is in the delimiter set.
func (c Config) IsDelimiter(b byte) bool {
	return b < asciiLimit && c.delimiters[b]
}

// Delimiters returns the delimiter set in ascending byte order.
func (c Config) Delimiters() []byte {
	var out []byte
	for b := 0; b < asciiLimit; b++ {
		if c.delimiters[b] {
			out = append(out, byte(b))
		}
	}
	return out
}

// Tokenizer is the tokenization engine. The zero value is not usable; call New.
type Tokenizer struct {
	cfg      Config
	specials SpecialTokens
	vocab    *Vocabulary
	ids      [4]int
}

// New returns a Tokenizer with the given configuration, the default special
// token strings and no vocabulary.
func New(cfg Config) *Tokenizer {
	t := &Tokenizer{
		cfg:      cfg,
		specials: DefaultSpecialTokens(),
	}
	t.resolveSpecials()
	return t
}

// SimpleSplit tokenizes text with the default configuration.
func SimpleSplit(text string) []string {
	return New(DefaultConfig()).Tokenize(text)
}

// Config returns a copy of the current configuration.
func (t *Tokenizer) Config() Config { return t.cfg }

// SetConfig replaces the whole configuration.
func (t *Tokenizer) SetConfig(cfg Config) *Tokenizer {
	t.cfg = cfg
	return t
}

func (t *Tokenizer) SetLowercase(enable bool) *Tokenizer {
	t.cfg = t.cfg.WithLowercase(enable)
	return t
}

func (t *Tokenizer) SetKeepPunctuation(enable bool) *Tokenizer {
	t.cfg = t.cfg.WithKeepPunctuation(enable)
	return t
}

func (t *Tokenizer) SetSplitOnPunctuation(enable bool) *Tokenizer {
	t.cfg = t.cfg.WithSplitOnPunctuation(enable)
	return t
}

func (t *Tokenizer) AddDelimiter(d byte) *Tokenizer {
	t.cfg = t.cfg.WithDelimiter(d)
	return t
}

func (t *Tokenizer) AddDelimiters(delims string) *Tokenizer {
	t.cfg = t.cfg.WithDelimiters(delims)
	return t
}

// SetSpecialTokens replaces the marker strings and re-resolves their ids
// against the installed vocabulary.
func (t *Tokenizer) SetSpecialTokens(s SpecialTokens) *Tokenizer {
	t.specials = s
	t.resolveSpecials()
	return t
}

// SpecialTokens returns the configured marker strings.
func (t *Tokenizer) SpecialTokens() SpecialTokens { return t.specials }

func (t *Tokenizer) resolveSpecials() {
	for k := Unk; k <= Sep; k++ {
		t.ids[k] = NoID
		if t.vocab == nil {
			continue
		}
		if id, ok := t.vocab.ID(t.specials.Get(k)); ok {
			t.ids[k] = id
		}
	}
}

// HasVocab reports whether a vocabulary is installed.
func (t *Tokenizer) HasVocab() bool { return t.vocab != nil }

// Vocabulary returns the installed vocabulary, or nil.
func (t *Tokenizer) Vocabulary() *Vocabulary { return t.vocab }

// VocabSize returns the number of vocabulary entries, 0 without a vocabulary.
func (t *Tokenizer) VocabSize() int {
	if t.vocab == nil {
		return 0
	}
	return t.vocab.Size()
}

// SpecialID returns the id of a marker token and whether it is present.
func (t *Tokenizer) SpecialID(k SpecialKind) (int, bool) {
	if k < Unk || k > Sep {
		return NoID, false
	}
	id := t.ids[k]
	return id, id != NoID
}

func (t *Tokenizer) UnkID() int { return t.ids[Unk] }
func (t *Tokenizer) PadID() int { return t.ids[Pad] }
func (t *Tokenizer) ClsID() int { return t.ids[Cls] }
func (t *Tokenizer) SepID() int { return t.ids[Sep] }

// TokenByID returns the vocabulary string for id, or InvalidToken.
func (t *Tokenizer) TokenByID(id int) string {
	if t.vocab == nil {
		return InvalidToken
	}
	tok, ok := t.vocab.Token(id)
	if !ok {
		return InvalidToken
	}
	return tok
}
