package shield_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hazyhaar/maquette/shield"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	h := shield.SecurityHeaders(shield.DefaultHeaders())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy not set")
	}
}

func TestMaxBody_BlocksOversize(t *testing.T) {
	// WHAT: a body larger than the cap fails to read in the handler.
	// WHY: clone requests are small JSON; anything big is abuse or a mistake.
	var readErr error
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 1024)
		for {
			_, err := r.Body.Read(buf)
			if err != nil {
				if err.Error() != "EOF" {
					readErr = err
				}
				return
			}
		}
	})
	h := shield.MaxBody(16)(inner)

	req := httptest.NewRequest(http.MethodPost, "/clone", strings.NewReader(strings.Repeat("x", 64)))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil {
		t.Fatal("expected read error for oversize body")
	}
}

func TestMaxBody_PassesSmall(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		if _, err := r.Body.Read(buf); err != nil && err.Error() != "EOF" {
			t.Errorf("unexpected read error: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	h := shield.MaxBody(1024)(inner)

	req := httptest.NewRequest(http.MethodPost, "/clone", strings.NewReader(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter_Blocks(t *testing.T) {
	rl := shield.NewRateLimiter(map[string]shield.RateLimitConfig{
		"POST /clone": {MaxRequests: 2, WindowSeconds: 60, Enabled: true},
	})
	h := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/clone", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clone", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "detail") {
		t.Fatalf("429 body = %q, want detail field", rec.Body.String())
	}
}

func TestRateLimiter_ConcurrentSameIP(t *testing.T) {
	// WHAT: with many simultaneous requests from one IP, exactly
	// MaxRequests pass in the window.
	// WHY: the bucket counter is shared across request goroutines; a lost
	// update would admit more than the rule allows.
	rl := shield.NewRateLimiter(map[string]shield.RateLimitConfig{
		"POST /clone": {MaxRequests: 5, WindowSeconds: 60, Enabled: true},
	})
	h := rl.Middleware(okHandler())

	const workers = 40
	var passed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/clone", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			h.ServeHTTP(rec, req)
			if rec.Code == http.StatusOK {
				passed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := passed.Load(); got != 5 {
		t.Fatalf("passed = %d concurrent requests, want exactly 5", got)
	}
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := shield.NewRateLimiter(map[string]shield.RateLimitConfig{
		"POST /clone": {MaxRequests: 1, WindowSeconds: 60, Enabled: true},
	})
	h := rl.Middleware(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/clone", nil)
		req.RemoteAddr = addr
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("ip %s: status = %d, want 200", addr, rec.Code)
		}
	}
}

func TestRateLimiter_UnruledEndpointPasses(t *testing.T) {
	rl := shield.NewRateLimiter(nil)
	h := rl.Middleware(okHandler())

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1"
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote addr", "", "192.168.1.5:4242", "192.168.1.5"},
		{"single xff", "203.0.113.9", "10.0.0.1:1", "203.0.113.9"},
		{"xff chain", "203.0.113.9, 10.0.0.2", "10.0.0.1:1", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := shield.ExtractIP(req); got != tt.want {
				t.Errorf("ExtractIP = %q, want %q", got, tt.want)
			}
		})
	}
}
