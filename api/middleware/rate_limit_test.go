package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fooddealsberlin/backend/pkg/config"
)

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}
	handler := RateLimit(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestRateLimitKeysByClient(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}
	handler := RateLimit(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/", nil)
	req1.RemoteAddr = "10.0.0.1:1234"
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, req1)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.RemoteAddr = "10.0.0.2:1234"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestRateLimitPrefersAuthenticatedUserKey(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}
	handler := RateLimit(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Same IP, different users: each gets their own bucket.
	for _, user := range []string{"user-a", "user-b"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(WithUserID(req.Context(), user))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

type fakeWindowStore struct {
	allowed bool
	err     error

	gotScope  string
	gotLimit  int64
	gotWindow time.Duration
	calls     int
}

func (f *fakeWindowStore) FixedWindowAllow(_ context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	f.calls++
	f.gotScope = scope
	f.gotLimit = limit
	f.gotWindow = window
	return f.allowed, 1, f.err
}

func TestAccountRateLimitUsesSharedWindow(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 2, Burst: 4}
	store := &fakeWindowStore{allowed: true}
	handler := AccountRateLimit(cfg, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), "user-a"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, "account:user-a", store.gotScope)
	assert.Equal(t, int64(120), store.gotLimit)
	assert.Equal(t, time.Minute, store.gotWindow)
}

func TestAccountRateLimitDeniesOverBudget(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}
	store := &fakeWindowStore{allowed: false}
	handler := AccountRateLimit(cfg, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), "user-a"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAccountRateLimitFailsOpenOnStoreError(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}
	store := &fakeWindowStore{err: errors.New("redis down")}
	handler := AccountRateLimit(cfg, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// The in-process bucket takes over: burst of 2 passes, the third is cut.
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-a"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestAccountRateLimitWithoutStore(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}
	handler := AccountRateLimit(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
