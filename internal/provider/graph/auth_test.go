package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func countingTokenServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(oauthToken{
			AccessToken: "token-" + strconv.Itoa(int(n)),
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestTokenSource(server *httptest.Server) *tokenSource {
	return newTokenSource(clientCredentials{
		tokenURL: server.URL,
		clientID: "card-app",
		secret:   "card-secret",
	}, server.Client())
}

func TestTokenSource_PostsClientCredentials(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		want := map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     "card-app",
			"client_secret": "card-secret",
			"scope":         graphScope,
		}
		for key, value := range want {
			if got := r.PostFormValue(key); got != value {
				t.Errorf("%s: got %q, want %q", key, got, value)
			}
		}
		json.NewEncoder(w).Encode(oauthToken{AccessToken: "issued", ExpiresIn: 3600})
	}))
	defer server.Close()

	token, err := newTestTokenSource(server).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "issued" {
		t.Errorf("token: got %q, want %q", token, "issued")
	}
}

func TestTokenSource_ReusesFreshToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	src := newTestTokenSource(countingTokenServer(t, &calls))

	first, _ := src.Get(context.Background())
	second, _ := src.Get(context.Background())
	if first != "token-1" || second != "token-1" {
		t.Errorf("tokens: got %q then %q, want token-1 twice", first, second)
	}
	if calls.Load() != 1 {
		t.Errorf("fetch count: got %d, want 1", calls.Load())
	}
}

func TestTokenSource_RefreshesBeforeExpiry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	src := newTestTokenSource(countingTokenServer(t, &calls))

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return clock }

	if _, err := src.Get(context.Background()); err != nil {
		t.Fatalf("first Get: %v", err)
	}

	// 3600s lifetime is treated as stale 5 minutes early.
	clock = clock.Add(54 * time.Minute)
	if tok, _ := src.Get(context.Background()); tok != "token-1" {
		t.Errorf("at 54m: got %q, want token-1", tok)
	}
	clock = clock.Add(2 * time.Minute)
	if tok, _ := src.Get(context.Background()); tok != "token-2" {
		t.Errorf("at 56m: got %q, want token-2", tok)
	}
}

func TestTokenSource_Reset(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	src := newTestTokenSource(countingTokenServer(t, &calls))

	if _, err := src.Get(context.Background()); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	src.Reset()

	token, err := src.Get(context.Background())
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if token != "token-2" {
		t.Errorf("token: got %q, want %q", token, "token-2")
	}
}

func TestTokenSource_ConcurrentCallersShareFetch(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		json.NewEncoder(w).Encode(oauthToken{AccessToken: "shared", ExpiresIn: 3600})
	}))
	defer server.Close()

	src := newTestTokenSource(server)

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], _ = src.Get(context.Background())
		}(i)
	}
	wg.Wait()

	for i, tok := range tokens {
		if tok != "shared" {
			t.Errorf("caller %d: got %q", i, tok)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("fetch count: got %d, want 1", calls.Load())
	}
}

func TestTokenSource_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200 status", http.StatusUnauthorized, `{"error":"invalid_client"}`},
		{"malformed json", http.StatusOK, `{`},
		{"missing access_token", http.StatusOK, `{"expires_in":3600}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			if _, err := newTestTokenSource(server).Get(context.Background()); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
