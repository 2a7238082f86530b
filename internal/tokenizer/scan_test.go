package tokenizer

import (
	"slices"
	"strings"
	"testing"
)

func punctConfig(lower bool) Config {
	return DefaultConfig().
		WithLowercase(lower).
		WithSplitOnPunctuation(true).
		WithKeepPunctuation(true)
}

func TestLeadLength(t *testing.T) {
	tests := []struct {
		b    byte
		want int
	}{
		{'a', 1},
		{0x7F, 1},
		{0xC3, 2},
		{0xE4, 3},
		{0xF0, 4},
		{0x80, 1}, // continuation byte
		{0xBF, 1},
		{0xF8, 1},
		{0xFF, 1},
	}
	for _, tt := range tests {
		if got := leadLength(tt.b); got != tt.want {
			t.Errorf("leadLength(%#x) = %d, want %d", tt.b, got, tt.want)
		}
	}
}

func TestIsPunct(t *testing.T) {
	const punct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	for i := 0; i < 256; i++ {
		b := byte(i)
		want := strings.IndexByte(punct, b) >= 0
		if got := isPunct(b); got != want {
			t.Errorf("isPunct(%q) = %v, want %v", b, got, want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		text string
		want []string
	}{
		{
			name: "empty",
			cfg:  DefaultConfig(),
			text: "",
			want: []string{},
		},
		{
			name: "whitespace only",
			cfg:  DefaultConfig(),
			text: "   \t\n",
			want: []string{},
		},
		{
			name: "single spaces",
			cfg:  DefaultConfig(),
			text: "the quick brown fox",
			want: []string{"the", "quick", "brown", "fox"},
		},
		{
			name: "mixed whitespace runs",
			cfg:  DefaultConfig(),
			text: "  a\t\tb\r\n c\f\vd  ",
			want: []string{"a", "b", "c", "d"},
		},
		{
			name: "default keeps punctuation attached",
			cfg:  DefaultConfig(),
			text: "Hello, world!",
			want: []string{"Hello,", "world!"},
		},
		{
			name: "split and keep punctuation lowercase",
			cfg:  punctConfig(true),
			text: "Hello, world!",
			want: []string{"hello", ",", "world", "!"},
		},
		{
			name: "split and keep punctuation preserves case",
			cfg:  punctConfig(false),
			text: "Hello, world!",
			want: []string{"Hello", ",", "world", "!"},
		},
		{
			name: "split without keeping punctuation",
			cfg:  DefaultConfig().WithSplitOnPunctuation(true),
			text: "Hello, world!",
			want: []string{"Hello", "world"},
		},
		{
			name: "punctuation run fully split",
			cfg:  punctConfig(false),
			text: "!!!",
			want: []string{"!", "!", "!"},
		},
		{
			name: "punctuation after one letter word",
			cfg:  punctConfig(false),
			text: "a!?b",
			want: []string{"a", "!", "?", "b"},
		},
		{
			name: "whitespace inside punctuation run",
			cfg:  punctConfig(false),
			text: "end. . .next",
			want: []string{"end", ".", ".", ".", "next"},
		},
		{
			name: "keep punctuation without splitting on it",
			cfg:  DefaultConfig().WithKeepPunctuation(true),
			text: "C++ vs Rust",
			want: []string{"C++", "vs", "Rust"},
		},
		{
			name: "custom delimiter punctuation kept",
			cfg:  DefaultConfig().WithDelimiter('-').WithKeepPunctuation(true),
			text: "well-known",
			want: []string{"well", "-", "known"},
		},
		{
			name: "custom letter delimiter",
			cfg:  DefaultConfig().WithDelimiters("x"),
			text: "axbxxc",
			want: []string{"a", "b", "c"},
		},
		{
			name: "contractions",
			cfg:  punctConfig(true),
			text: "It's a beautiful day, isn't it?",
			want: []string{"it", "'", "s", "a", "beautiful", "day", ",", "isn", "'", "t", "it", "?"},
		},
		{
			name: "url",
			cfg:  punctConfig(true),
			text: "https://www.example.com",
			want: []string{"https", ":", "/", "/", "www", ".", "example", ".", "com"},
		},
		{
			name: "mixed alphanumeric",
			cfg:  punctConfig(true),
			text: "Hello123World",
			want: []string{"hello123world"},
		},
		{
			name: "accented characters untouched by lowercase",
			cfg:  punctConfig(true),
			text: "Café NAÏVE résumé",
			want: []string{"café", "naÏve", "résumé"},
		},
		{
			name: "cjk",
			cfg:  punctConfig(true),
			text: "你好世界",
			want: []string{"你好世界"},
		},
		{
			name: "emoji",
			cfg:  punctConfig(true),
			text: "🚀🌟💡",
			want: []string{"🚀🌟💡"},
		},
		{
			name: "multibyte adjacent to punctuation",
			cfg:  punctConfig(false),
			text: "日本,語!",
			want: []string{"日本", ",", "語", "!"},
		},
		{
			name: "truncated lead byte swallows following delimiter",
			cfg:  DefaultConfig(),
			text: "a\xE0 b",
			want: []string{"a\xE0 b"},
		},
		{
			name: "truncated lead byte at end",
			cfg:  DefaultConfig(),
			text: "ab \xF0",
			want: []string{"ab", "\xF0"},
		},
		{
			name: "stray continuation bytes",
			cfg:  DefaultConfig(),
			text: "\x80\x81 x",
			want: []string{"\x80\x81", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New(tt.cfg)
			got := tok.Tokenize(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tt.text, got, tt.want)
			}
			if n := tok.CountTokens(tt.text); n != len(tt.want) {
				t.Errorf("CountTokens(%q) = %d, want %d", tt.text, n, len(tt.want))
			}
		})
	}
}

func TestTokenize_WhitespaceSplitProperty(t *testing.T) {
	tok := New(DefaultConfig())
	texts := []string{
		"a",
		"hello world",
		"The quick brown fox jumps over the lazy dog",
		"x y z w v u",
	}
	for _, text := range texts {
		want := strings.Split(text, " ")
		if got := tok.Tokenize(text); !slices.Equal(got, want) {
			t.Errorf("Tokenize(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestCountTokens_MatchesTokenize(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Hello, world!",
		"!!!",
		"?!.,;:",
		"a!b?c.",
		"  ,leading punctuation",
		"trailing punctuation,  ",
		"café naïve résumé",
		"你好, 世界!",
		"🚀 🌟 💡",
		"\xE0\xE0\xE0",
		"\xC3",
		"x\xF0\x9F",
		"user@example.com",
		"C++ vs Python vs Rust",
	}
	configs := map[string]Config{
		"default":     DefaultConfig(),
		"split":       DefaultConfig().WithSplitOnPunctuation(true),
		"keep":        DefaultConfig().WithKeepPunctuation(true),
		"split+keep":  punctConfig(false),
		"lower+all":   punctConfig(true),
		"extra delim": DefaultConfig().WithDelimiters("@.").WithKeepPunctuation(true),
	}
	for name, cfg := range configs {
		tok := New(cfg)
		for _, in := range inputs {
			if got, want := tok.CountTokens(in), len(tok.Tokenize(in)); got != want {
				t.Errorf("%s: CountTokens(%q) = %d, len(Tokenize) = %d", name, in, got, want)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	lower := DefaultConfig().WithLowercase(true)
	plain := DefaultConfig()

	tests := []struct {
		name string
		cfg  Config
		in   string
		want string
	}{
		{"verbatim without lowercase", plain, "HeLLo", "HeLLo"},
		{"ascii folded", lower, "HeLLo", "hello"},
		{"already lower", lower, "hello", "hello"},
		{"digits and punctuation unchanged", lower, "A1-B2", "a1-b2"},
		{"multibyte copied", lower, "ÀÉÎ", "ÀÉÎ"},
		{"mixed", lower, "ÉCOLE", "École"},
		{"ascii hidden by lead length", lower, "\xE0AB", "\xE0AB"},
		{"lead length clipped at end", lower, "Z\xF0A", "z\xF0A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.normalize(tt.in); got != tt.want {
				t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSimpleSplit(t *testing.T) {
	got := SimpleSplit("Natural language processing with Go")
	want := []string{"Natural", "language", "processing", "with", "Go"}
	if !slices.Equal(got, want) {
		t.Errorf("SimpleSplit = %q, want %q", got, want)
	}
}
