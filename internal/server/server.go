package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/go-text-tokenizer/internal/config"
	"github.com/example/go-text-tokenizer/internal/tokenizer"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Engine is the read-only tokenizer surface served over HTTP.
type Engine interface {
	Tokenize(text string) []string
	Encode(text string) []int
	EncodeSequence(text string, maxLength int, addSpecialTokens bool) []int
	Decode(ids []int) string
	HasVocab() bool
	VocabSize() int
	SpecialTokens() tokenizer.SpecialTokens
	SpecialID(k tokenizer.SpecialKind) (int, bool)
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes     int
	workers          int
	cacheSize        int
	defaultMaxLength int
	requestTimeout   time.Duration
	logger           *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:     64 * 1024,
		cacheSize:        1024,
		defaultMaxLength: 512,
		requestTimeout:   10 * time.Second,
		logger:           slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes. Decode
// requests are limited to the same number of ids.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers caps concurrently served POST requests. 0 disables the cap.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithCacheSize sets the number of cached encode results. 0 disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithDefaultMaxLength sets max_length for /sequence requests that omit it.
func WithDefaultMaxLength(n int) Option {
	return func(o *options) { o.defaultMaxLength = n }
}

// WithRequestTimeout bounds the time spent serving one request.
// 0 disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type cacheKey struct {
	text      string
	sequence  bool
	maxLength int
	special   bool
}

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	eng   Engine
	opts  options
	sem   chan struct{} // nil when workers is 0
	cache *lru.Cache[cacheKey, []int]
	log   *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /vocab and the
// POST endpoints /tokenize, /encode, /sequence and /decode.
func NewHandler(eng Engine, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		eng:  eng,
		opts: opts,
		log:  opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}
	if opts.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		h.cache, _ = lru.New[cacheKey, []int](opts.cacheSize)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/vocab", h.handleVocab)
	mux.HandleFunc("/tokenize", h.post(h.handleTokenize))
	mux.HandleFunc("/encode", h.post(h.handleEncode))
	mux.HandleFunc("/sequence", h.post(h.handleSequence))
	mux.HandleFunc("/decode", h.post(h.handleDecode))

	var root http.Handler = mux
	if opts.requestTimeout > 0 {
		root = http.TimeoutHandler(root, opts.requestTimeout, `{"error":"request timed out"}`)
	}
	return withRequestID(root)
}

type requestIDKey struct{}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID keeps a client supplied X-Request-ID or assigns a new one,
// echoing it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

// VocabInfo is the body of GET /vocab. Absent special tokens are omitted
// from SpecialIDs.
type VocabInfo struct {
	HasVocab      bool              `json:"has_vocab"`
	Size          int               `json:"size"`
	SpecialTokens map[string]string `json:"special_tokens"`
	SpecialIDs    map[string]int    `json:"special_ids"`
}

func (h *handler) handleVocab(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sp := h.eng.SpecialTokens()
	info := VocabInfo{
		HasVocab: h.eng.HasVocab(),
		Size:     h.eng.VocabSize(),
		SpecialTokens: map[string]string{},
		SpecialIDs:    map[string]int{},
	}
	for _, k := range tokenizer.SpecialKinds() {
		info.SpecialTokens[k.String()] = sp.Get(k)
		if id, ok := h.eng.SpecialID(k); ok {
			info.SpecialIDs[k.String()] = id
		}
	}
	writeJSON(w, http.StatusOK, info)
}

// request is the union of all POST bodies.
type request struct {
	Text             string `json:"text"`
	MaxLength        *int   `json:"max_length,omitempty"`
	AddSpecialTokens *bool  `json:"add_special_tokens,omitempty"`
	IDs              []int  `json:"ids"`
}

type postFunc func(w http.ResponseWriter, r *http.Request, req request)

// post decodes the JSON body, applies the worker cap and logs the request.
func (h *handler) post(fn postFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if r.Body == nil || r.Body == http.NoBody {
			writeError(w, http.StatusBadRequest, "request body is required")
			return
		}

		// JSON escaping can expand text up to six times.
		r.Body = http.MaxBytesReader(w, r.Body, int64(h.opts.maxTextBytes)*6+4096)

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
				return
			}
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}

		if h.sem != nil {
			select {
			case h.sem <- struct{}{}:
			case <-r.Context().Done():
				writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
				return
			}
			defer func() { <-h.sem }()
		}

		fn(w, r, req)
	}
}

func (h *handler) checkText(w http.ResponseWriter, text string) bool {
	if text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return false
	}
	if len(text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return false
	}
	return true
}

func (h *handler) logDone(r *http.Request, textLen, tokens int, start time.Time, cached bool) {
	h.log.InfoContext(r.Context(), "request complete",
		slog.String("request_id", RequestID(r.Context())),
		slog.String("endpoint", r.URL.Path),
		slog.Int("text_len", textLen),
		slog.Int("tokens", tokens),
		slog.Bool("cached", cached),
		slog.Int64("duration_us", time.Since(start).Microseconds()),
	)
}

// TokenizeResponse is the body of POST /tokenize.
type TokenizeResponse struct {
	Tokens []string `json:"tokens"`
	Count  int      `json:"count"`
}

func (h *handler) handleTokenize(w http.ResponseWriter, r *http.Request, req request) {
	if !h.checkText(w, req.Text) {
		return
	}
	start := time.Now()
	tokens := h.eng.Tokenize(req.Text)
	h.logDone(r, len(req.Text), len(tokens), start, false)
	writeJSON(w, http.StatusOK, TokenizeResponse{Tokens: tokens, Count: len(tokens)})
}

// IDsResponse is the body of POST /encode and POST /sequence.
type IDsResponse struct {
	IDs []int `json:"ids"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request, req request) {
	if !h.checkText(w, req.Text) {
		return
	}
	start := time.Now()
	ids, cached := h.cached(cacheKey{text: req.Text}, func() []int {
		return h.eng.Encode(req.Text)
	})
	h.logDone(r, len(req.Text), len(ids), start, cached)
	writeJSON(w, http.StatusOK, IDsResponse{IDs: ids})
}

func (h *handler) handleSequence(w http.ResponseWriter, r *http.Request, req request) {
	if !h.checkText(w, req.Text) {
		return
	}
	maxLength := h.opts.defaultMaxLength
	if req.MaxLength != nil {
		maxLength = *req.MaxLength
	}
	if maxLength < 0 {
		writeError(w, http.StatusBadRequest, "max_length must be >= 0")
		return
	}
	special := true
	if req.AddSpecialTokens != nil {
		special = *req.AddSpecialTokens
	}

	start := time.Now()
	key := cacheKey{text: req.Text, sequence: true, maxLength: maxLength, special: special}
	ids, cached := h.cached(key, func() []int {
		return h.eng.EncodeSequence(req.Text, maxLength, special)
	})
	h.logDone(r, len(req.Text), len(ids), start, cached)
	writeJSON(w, http.StatusOK, IDsResponse{IDs: ids})
}

// DecodeResponse is the body of POST /decode.
type DecodeResponse struct {
	Text string `json:"text"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request, req request) {
	if req.IDs == nil {
		writeError(w, http.StatusBadRequest, "ids field is required")
		return
	}
	if len(req.IDs) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("ids exceed maximum count of %d", h.opts.maxTextBytes))
		return
	}
	start := time.Now()
	text := h.eng.Decode(req.IDs)
	h.logDone(r, len(text), len(req.IDs), start, false)
	writeJSON(w, http.StatusOK, DecodeResponse{Text: text})
}

// cached returns the cached ids for key or computes and stores them.
func (h *handler) cached(key cacheKey, compute func() []int) ([]int, bool) {
	if h.cache == nil {
		return compute(), false
	}
	if ids, ok := h.cache.Get(key); ok {
		return ids, true
	}
	ids := compute()
	h.cache.Add(key, ids)
	return ids, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server: wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	eng             Engine
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func New(cfg config.Config, eng Engine) *Server {
	return &Server{
		cfg:             cfg,
		eng:             eng,
		logger:          slog.Default(),
		shutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.logger = l
	return s
}

// Handler builds the request handler from the server configuration.
func (s *Server) Handler() http.Handler {
	return NewHandler(s.eng,
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithWorkers(s.cfg.Server.Workers),
		WithCacheSize(s.cfg.Server.CacheSize),
		WithDefaultMaxLength(s.cfg.Tokenizer.MaxLength),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithLogger(s.logger),
	)
}

func (s *Server) Start(ctx context.Context) error {
	if s.eng == nil {
		return errors.New("server: nil engine")
	}

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.InfoContext(ctx, "server listening",
		slog.String("addr", s.cfg.Server.ListenAddr),
		slog.Int("vocab_size", s.eng.VocabSize()),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
