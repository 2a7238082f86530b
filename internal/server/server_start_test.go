package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/go-text-tokenizer/internal/config"
	"github.com/example/go-text-tokenizer/internal/tokenizer"
)

func freeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // free it for the server
	return addr
}

func TestNew_ShutdownTimeoutFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.ShutdownTimeout = 7

	s := New(cfg, nil)
	if s.shutdownTimeout != 7*time.Second {
		t.Errorf("shutdownTimeout = %v; want 7s", s.shutdownTimeout)
	}

	if returned := s.WithShutdownTimeout(time.Second); returned != s || s.shutdownTimeout != time.Second {
		t.Error("WithShutdownTimeout should update and return the same *Server")
	}
}

func TestStart_NilEngine(t *testing.T) {
	if err := New(config.DefaultConfig(), nil).Start(context.Background()); err == nil {
		t.Fatal("want error for nil engine")
	}
}

func TestStart_LifecycleHealthAndShutdown(t *testing.T) {
	addr := freeAddr(t)

	cfg := config.DefaultConfig()
	cfg.Server.ListenAddr = addr

	tok := tokenizer.New(tokenizer.DefaultConfig()).LoadVocab([]string{"[PAD]", "[UNK]", "hello"})
	s := New(cfg, tok).WithShutdownTimeout(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.Start(ctx)
	}()

	var err error
	for range 50 {
		err = ProbeHTTP(addr)
		if err == nil {
			break
		}

		time.Sleep(20 * time.Millisecond)
	}

	if err != nil {
		t.Fatalf("server never became ready: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/vocab", addr))
	if err != nil {
		t.Fatalf("GET /vocab: %v", err)
	}
	defer resp.Body.Close()

	var info VocabInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode /vocab: %v", err)
	}

	if info.Size != 3 {
		t.Errorf("size = %d; want 3", info.Size)
	}

	// Graceful shutdown.
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start() returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return within 5s of context cancel")
	}
}

func TestProbeHTTP_NoServer(t *testing.T) {
	if err := ProbeHTTP(freeAddr(t)); err == nil {
		t.Fatal("want error when nothing listens")
	}
}

func TestCached_KeysDistinguishRequests(t *testing.T) {
	cache, err := lru.New[cacheKey, []int](8)
	if err != nil {
		t.Fatalf("lru.New: %v", err)
	}
	h := &handler{cache: cache}

	calls := 0
	compute := func() []int { calls++; return []int{calls} }

	keys := []cacheKey{
		{text: "a"},
		{text: "a", sequence: true, maxLength: 4, special: true},
		{text: "a", sequence: true, maxLength: 4},
		{text: "a", sequence: true, maxLength: 5, special: true},
	}
	for _, k := range keys {
		if _, hit := h.cached(k, compute); hit {
			t.Errorf("first lookup of %+v reported a hit", k)
		}
	}
	for i, k := range keys {
		ids, hit := h.cached(k, compute)
		if !hit || ids[0] != i+1 {
			t.Errorf("second lookup of %+v = %v, %v", k, ids, hit)
		}
	}
	if calls != len(keys) {
		t.Errorf("calls = %d; want %d", calls, len(keys))
	}
}

func TestCached_NilCacheAlwaysComputes(t *testing.T) {
	h := &handler{}
	calls := 0
	for range 3 {
		if _, hit := h.cached(cacheKey{text: "a"}, func() []int { calls++; return nil }); hit {
			t.Error("nil cache reported a hit")
		}
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
}
