package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	expected := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range expected {
		assert.Equal(t, value, w.Header().Get(header), "header %s", header)
	}

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRequestSizeLimiter(t *testing.T) {
	// The handler drains the body the way the signal decoders do
	handler := RequestSizeLimiter(64)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))

	t.Run("small body passes through", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/session/ABCDE/validate", strings.NewReader(`{"names":"Ada"}`))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `{"names":"Ada"}`, w.Body.String())
	})

	t.Run("oversized body fails to read", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/session/ABCDE/validate", strings.NewReader(strings.Repeat("a", 200)))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "request body too large")
	})
}

func TestRateLimiter(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(handler http.Handler, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = remoteAddr
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("requests beyond the burst are rejected", func(t *testing.T) {
		rl := NewRateLimiter(1, 2)
		handler := rl.Middleware()(okHandler)

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111", "").Code)
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111", "").Code)

		w := send(handler, "10.0.0.1:1111", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "Rate limit exceeded")
	})

	t.Run("each address gets its own allowance", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		handler := rl.Middleware()(okHandler)

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111", "").Code)
		assert.Equal(t, http.StatusTooManyRequests, send(handler, "10.0.0.1:1111", "").Code)

		// A different client is unaffected
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.2:2222", "").Code)
	})

	t.Run("X-Forwarded-For overrides the remote address", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		handler := rl.Middleware()(okHandler)

		// Two clients behind the same proxy
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111", "203.0.113.7").Code)
		assert.Equal(t, http.StatusTooManyRequests, send(handler, "10.0.0.1:1111", "203.0.113.7").Code)
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111", "203.0.113.8").Code)

		// The proxy address itself still has its own allowance
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111", "").Code)
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		rl := NewRateLimiter(20, 1)
		handler := rl.Middleware()(okHandler)

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111", "").Code)
		assert.Equal(t, http.StatusTooManyRequests, send(handler, "10.0.0.1:1111", "").Code)

		time.Sleep(100 * time.Millisecond)

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111", "").Code)
	})

	t.Run("the same key reuses one limiter", func(t *testing.T) {
		rl := NewRateLimiter(10, 5)

		first := rl.getLimiter("10.0.0.1")
		second := rl.getLimiter("10.0.0.1")
		other := rl.getLimiter("10.0.0.2")

		assert.Same(t, first, second)
		assert.NotSame(t, first, other)
	})
}

func TestVisitorSweep(t *testing.T) {
	t.Run("idle visitors are dropped", func(t *testing.T) {
		rl := NewRateLimiter(10, 5)
		rl.getLimiter("fresh")
		rl.getLimiter("stale")
		rl.visitors["stale"].lastSeen = time.Now().Add(-visitorIdleTimeout - time.Minute)

		rl.mu.Lock()
		rl.sweepLocked(time.Now())
		rl.mu.Unlock()

		assert.Contains(t, rl.visitors, "fresh")
		assert.NotContains(t, rl.visitors, "stale")
	})

	t.Run("a full map sweeps before inserting", func(t *testing.T) {
		rl := NewRateLimiter(10, 5)
		stale := time.Now().Add(-visitorIdleTimeout - time.Minute)
		for i := 0; i < maxTrackedVisitors; i++ {
			rl.visitors["198.51.100.1:"+strconv.Itoa(i)] = &visitor{
				limiter:  rate.NewLimiter(rl.rate, rl.burst),
				lastSeen: stale,
			}
		}

		rl.getLimiter("10.0.0.1:1111")

		assert.Len(t, rl.visitors, 1)
		assert.Contains(t, rl.visitors, "10.0.0.1:1111")
	})
}

func TestRateLimiterConcurrency(t *testing.T) {
	rl := NewRateLimiter(100, 10)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			addr := "10.0.0." + strconv.Itoa(n%10) + ":1111"
			for j := 0; j < 10; j++ {
				req := httptest.NewRequest("GET", "/", nil)
				req.RemoteAddr = addr
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				if w.Code != http.StatusOK && w.Code != http.StatusTooManyRequests {
					t.Errorf("unexpected status %d", w.Code)
				}
			}
		}(i)
	}
	wg.Wait()
}
