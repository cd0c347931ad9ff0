package middlewarectx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newNoopLoggerLimit() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := newNoopLoggerLimit()
	middleware := RateLimitMiddleware(logger)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	t.Run("allows requests within rate limit", func(t *testing.T) {
		originalLimiter := limiter
		limiter = rate.NewLimiter(10, 10)
		defer func() { limiter = originalLimiter }()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

		for range 10 {
			w := httptest.NewRecorder()
			middleware(testHandler).ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "success", w.Body.String())
		}
	})

	t.Run("blocks requests exceeding rate limit", func(t *testing.T) {
		originalLimiter := limiter
		limiter = rate.NewLimiter(1, 1)
		defer func() { limiter = originalLimiter }()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

		w := httptest.NewRecorder()
		middleware(testHandler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		middleware(testHandler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		var got map[string]any
		err := json.NewDecoder(w.Body).Decode(&got)
		assert.NoError(t, err)
		assert.Equal(t, "too many requests", got["error"])
	})

	t.Run("allows requests after rate limit reset", func(t *testing.T) {
		originalLimiter := limiter
		limiter = rate.NewLimiter(1, 1)
		defer func() { limiter = originalLimiter }()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

		w := httptest.NewRecorder()
		middleware(testHandler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		middleware(testHandler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		time.Sleep(1 * time.Second)

		w = httptest.NewRecorder()
		middleware(testHandler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimitMiddleware_HandlerNotCalledWhenRateLimited(t *testing.T) {
	logger := newNoopLoggerLimit()
	middleware := RateLimitMiddleware(logger)

	originalLimiter := limiter
	limiter = rate.NewLimiter(1, 1)
	defer func() { limiter = originalLimiter }()

	var handlerCalled bool
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", nil)

	handlerCalled = false
	w := httptest.NewRecorder()
	middleware(testHandler).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handlerCalled, "Handler should be called for first request")

	handlerCalled = false
	w = httptest.NewRecorder()
	middleware(testHandler).ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, handlerCalled, "Handler should not be called when rate limited")
}
