package tokenizer

const asciiLimit = 0x80

// leadLength returns the byte length of the UTF-8 character introduced by c.
// Invalid lead bytes, including stray continuation bytes, count as one byte.
// The length is trusted even when fewer bytes follow.
func leadLength(c byte) int {
	switch {
	case c&0x80 == 0:
		return 1
	case c&0xE0 == 0xC0:
		return 2
	case c&0xF0 == 0xE0:
		return 3
	case c&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// isPunct matches the C locale ispunct class.
func isPunct(c byte) bool {
	return (c >= '!' && c <= '/') ||
		(c >= ':' && c <= '@') ||
		(c >= '[' && c <= '`') ||
		(c >= '{' && c <= '~')
}

func (c *Config) splitsAt(b byte) bool {
	if b >= asciiLimit {
		return false
	}
	return c.delimiters[b] || (c.SplitOnPunctuation && isPunct(b))
}

// span is a half-open byte range of the input. punct marks a single
// punctuation byte emitted verbatim.
type span struct {
	start, end int
	punct      bool
}

// scan walks text and calls emit for every token in order. Tokenize and
// CountTokens share it so their results always agree.
func (c *Config) scan(text string, emit func(span)) {
	n := len(text)
	start, i := 0, 0
	for i < n {
		b := text[i]
		if b >= asciiLimit {
			i += leadLength(b)
			continue
		}
		if !c.splitsAt(b) {
			i++
			continue
		}
		if i > start {
			emit(span{start: start, end: i})
		}
		for i < n && c.splitsAt(text[i]) {
			if c.KeepPunctuation && isPunct(text[i]) {
				emit(span{start: i, end: i + 1, punct: true})
			}
			i++
		}
		start = i
	}
	if start < n {
		emit(span{start: start, end: n})
	}
}

// normalize folds ASCII letters when lowercasing is enabled. Multi-byte
// characters are copied through whole, never inspected.
func (c *Config) normalize(tok string) string {
	if !c.Lowercase || !hasUpperASCII(tok) {
		return tok
	}
	out := make([]byte, 0, len(tok))
	for i := 0; i < len(tok); {
		b := tok[i]
		if b < asciiLimit {
			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}
			out = append(out, b)
			i++
			continue
		}
		end := i + leadLength(b)
		if end > len(tok) {
			end = len(tok)
		}
		out = append(out, tok[i:end]...)
		i = end
	}
	return string(out)
}

// hasUpperASCII reports whether normalize would change tok. Bytes hidden
// inside a multi-byte character by its lead length are skipped the same way.
func hasUpperASCII(tok string) bool {
	for i := 0; i < len(tok); {
		b := tok[i]
		if b >= asciiLimit {
			i += leadLength(b)
			continue
		}
		if b >= 'A' && b <= 'Z' {
			return true
		}
		i++
	}
	return false
}

// Tokenize splits text into normalized tokens in order of appearance.
// Any byte sequence is accepted.
func (t *Tokenizer) Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/4+1)
	t.cfg.scan(text, func(s span) {
		tok := text[s.start:s.end]
		if !s.punct {
			tok = t.cfg.normalize(tok)
		}
		tokens = append(tokens, tok)
	})
	return tokens
}

// CountTokens returns len(t.Tokenize(text)) without building the tokens.
func (t *Tokenizer) CountTokens(text string) int {
	n := 0
	t.cfg.scan(text, func(span) { n++ })
	return n
}
