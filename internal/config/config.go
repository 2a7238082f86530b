package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/go-text-tokenizer/internal/tokenizer"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths     PathsConfig     `mapstructure:"paths" yaml:"paths"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer" yaml:"tokenizer"`
	Vocab     VocabConfig     `mapstructure:"vocab" yaml:"vocab"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	LogLevel  string          `mapstructure:"log_level" yaml:"log_level"`
}

type PathsConfig struct {
	VocabPath string `mapstructure:"vocab_path" yaml:"vocab_path"`
}

type TokenizerConfig struct {
	Lowercase          bool   `mapstructure:"lowercase" yaml:"lowercase"`
	SplitOnPunctuation bool   `mapstructure:"split_on_punctuation" yaml:"split_on_punctuation"`
	KeepPunctuation    bool   `mapstructure:"keep_punctuation" yaml:"keep_punctuation"`
	ExtraDelimiters    string `mapstructure:"extra_delimiters" yaml:"extra_delimiters"`
	UnkToken           string `mapstructure:"unk_token" yaml:"unk_token"`
	PadToken           string `mapstructure:"pad_token" yaml:"pad_token"`
	ClsToken           string `mapstructure:"cls_token" yaml:"cls_token"`
	SepToken           string `mapstructure:"sep_token" yaml:"sep_token"`
	MaxLength          int    `mapstructure:"max_length" yaml:"max_length"`
}

type VocabConfig struct {
	MinFrequency int `mapstructure:"min_frequency" yaml:"min_frequency"`
	MaxSize      int `mapstructure:"max_size" yaml:"max_size"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes" yaml:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	CacheSize       int    `mapstructure:"cache_size" yaml:"cache_size"`
	Workers         int    `mapstructure:"workers" yaml:"workers"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	specials := tokenizer.DefaultSpecialTokens()
	build := tokenizer.DefaultBuildOptions()

	return Config{
		Paths: PathsConfig{
			VocabPath: "vocab.txt",
		},
		Tokenizer: TokenizerConfig{
			Lowercase:          false,
			SplitOnPunctuation: false,
			KeepPunctuation:    false,
			ExtraDelimiters:    "",
			UnkToken:           specials.Unk,
			PadToken:           specials.Pad,
			ClsToken:           specials.Cls,
			SepToken:           specials.Sep,
			MaxLength:          512,
		},
		Vocab: VocabConfig{
			MinFrequency: build.MinFrequency,
			MaxSize:      build.MaxSize,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTextBytes:    64 * 1024,
			RequestTimeout:  10,
			ShutdownTimeout: 30,
			CacheSize:       1024,
			Workers:         0,
		},
		LogLevel: "info",
	}
}

// flagKeys maps each command line flag to its configuration key.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"vocab", "paths.vocab_path"},
	{"lowercase", "tokenizer.lowercase"},
	{"split-punctuation", "tokenizer.split_on_punctuation"},
	{"keep-punctuation", "tokenizer.keep_punctuation"},
	{"delimiters", "tokenizer.extra_delimiters"},
	{"unk-token", "tokenizer.unk_token"},
	{"pad-token", "tokenizer.pad_token"},
	{"cls-token", "tokenizer.cls_token"},
	{"sep-token", "tokenizer.sep_token"},
	{"max-length", "tokenizer.max_length"},
	{"min-frequency", "vocab.min_frequency"},
	{"max-vocab-size", "vocab.max_size"},
	{"listen-addr", "server.listen_addr"},
	{"max-text-bytes", "server.max_text_bytes"},
	{"request-timeout", "server.request_timeout"},
	{"shutdown-timeout", "server.shutdown_timeout"},
	{"cache-size", "server.cache_size"},
	{"workers", "server.workers"},
	{"log-level", "log_level"},
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("vocab", defaults.Paths.VocabPath, "Path to vocabulary file (one token per line)")
	fs.Bool("lowercase", defaults.Tokenizer.Lowercase, "Fold ASCII letters to lowercase")
	fs.Bool("split-punctuation", defaults.Tokenizer.SplitOnPunctuation, "Split tokens on ASCII punctuation")
	fs.Bool("keep-punctuation", defaults.Tokenizer.KeepPunctuation, "Emit punctuation as separate tokens")
	fs.String("delimiters", defaults.Tokenizer.ExtraDelimiters, "Extra single-byte delimiters")
	fs.String("unk-token", defaults.Tokenizer.UnkToken, "Unknown token string")
	fs.String("pad-token", defaults.Tokenizer.PadToken, "Padding token string")
	fs.String("cls-token", defaults.Tokenizer.ClsToken, "Sequence start token string")
	fs.String("sep-token", defaults.Tokenizer.SepToken, "Sequence separator token string")
	fs.Int("max-length", defaults.Tokenizer.MaxLength, "Default maximum sequence length")
	fs.Int("min-frequency", defaults.Vocab.MinFrequency, "Minimum token frequency when building a vocabulary")
	fs.Int("max-vocab-size", defaults.Vocab.MaxSize, "Maximum vocabulary size when building a vocabulary")
	fs.String("listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "HTTP request timeout in seconds")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.Int("cache-size", defaults.Server.CacheSize, "Encoded sequence cache entries (0 disables)")
	fs.Int("workers", defaults.Server.Workers, "Maximum concurrent HTTP requests (0 unlimited)")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("TEXTTOK")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("texttok")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.vocab_path", c.Paths.VocabPath)
	v.SetDefault("tokenizer.lowercase", c.Tokenizer.Lowercase)
	v.SetDefault("tokenizer.split_on_punctuation", c.Tokenizer.SplitOnPunctuation)
	v.SetDefault("tokenizer.keep_punctuation", c.Tokenizer.KeepPunctuation)
	v.SetDefault("tokenizer.extra_delimiters", c.Tokenizer.ExtraDelimiters)
	v.SetDefault("tokenizer.unk_token", c.Tokenizer.UnkToken)
	v.SetDefault("tokenizer.pad_token", c.Tokenizer.PadToken)
	v.SetDefault("tokenizer.cls_token", c.Tokenizer.ClsToken)
	v.SetDefault("tokenizer.sep_token", c.Tokenizer.SepToken)
	v.SetDefault("tokenizer.max_length", c.Tokenizer.MaxLength)
	v.SetDefault("vocab.min_frequency", c.Vocab.MinFrequency)
	v.SetDefault("vocab.max_size", c.Vocab.MaxSize)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.cache_size", c.Server.CacheSize)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("log_level", c.LogLevel)
}

// bindFlags binds every registered flag to its key. Flags that are absent
// from fs are skipped so subcommands may register a subset.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", fk.flag, err)
		}
	}
	return nil
}

// Validate rejects settings no component can honour.
func (c Config) Validate() error {
	var errs []error
	t := c.Tokenizer
	for _, s := range []struct{ name, val string }{
		{"unk_token", t.UnkToken},
		{"pad_token", t.PadToken},
		{"cls_token", t.ClsToken},
		{"sep_token", t.SepToken},
	} {
		if strings.TrimSpace(s.val) == "" {
			errs = append(errs, fmt.Errorf("tokenizer.%s must not be empty", s.name))
		}
	}
	if t.MaxLength < 0 {
		errs = append(errs, fmt.Errorf("tokenizer.max_length must be >= 0, got %d", t.MaxLength))
	}
	if c.Vocab.MinFrequency < 1 {
		errs = append(errs, fmt.Errorf("vocab.min_frequency must be >= 1, got %d", c.Vocab.MinFrequency))
	}
	if c.Vocab.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("vocab.max_size must be >= 0, got %d", c.Vocab.MaxSize))
	}
	if c.Server.MaxTextBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_text_bytes must be > 0, got %d", c.Server.MaxTextBytes))
	}
	if c.Server.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("server.cache_size must be >= 0, got %d", c.Server.CacheSize))
	}
	if c.Server.Workers < 0 {
		errs = append(errs, fmt.Errorf("server.workers must be >= 0, got %d", c.Server.Workers))
	}
	return errors.Join(errs...)
}

// SpecialTokens returns the configured marker strings.
func (t TokenizerConfig) SpecialTokens() tokenizer.SpecialTokens {
	return tokenizer.SpecialTokens{
		Unk: t.UnkToken,
		Pad: t.PadToken,
		Cls: t.ClsToken,
		Sep: t.SepToken,
	}
}

// Engine returns the tokenizer configuration.
func (t TokenizerConfig) Engine() tokenizer.Config {
	return tokenizer.DefaultConfig().
		WithLowercase(t.Lowercase).
		WithSplitOnPunctuation(t.SplitOnPunctuation).
		WithKeepPunctuation(t.KeepPunctuation).
		WithDelimiters(t.ExtraDelimiters)
}

// NewTokenizer returns a tokenizer configured from t, without a vocabulary.
func (t TokenizerConfig) NewTokenizer() *tokenizer.Tokenizer {
	return tokenizer.New(t.Engine()).SetSpecialTokens(t.SpecialTokens())
}

// BuildOptions returns the corpus vocabulary bounds.
func (c VocabConfig) BuildOptions() tokenizer.BuildOptions {
	return tokenizer.BuildOptions{
		MinFrequency: c.MinFrequency,
		MaxSize:      c.MaxSize,
	}
}
