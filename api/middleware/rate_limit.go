package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/fooddealsberlin/backend/api/responses"
	"github.com/fooddealsberlin/backend/pkg/config"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

// clientLimiter hands out one token bucket per caller. Authenticated requests
// are keyed by user id so NAT'd users don't share a bucket; anonymous ones
// fall back to the client IP.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (cl *clientLimiter) get(key string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	limiter, ok := cl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(cl.rps, cl.burst)
		cl.limiters[key] = limiter
	}
	return limiter
}

// RateLimit applies a token-bucket limit per client.
func RateLimit(cfg config.RateLimitConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	cl := newClientLimiter(cfg.RequestsPerSecond, cfg.Burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := UserIDFromContext(r.Context())
			if key == "" {
				key = clientIP(r)
			}
			if !cl.get(key).Allow() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FixedWindowLimiter counts requests per scope in a shared store so the limit
// holds across api replicas. *redis.Client satisfies it.
type FixedWindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AccountRateLimit enforces a shared per-account budget over a one-minute
// window. When the store is missing or unreachable it falls back to the
// in-process token bucket instead of failing closed.
func AccountRateLimit(cfg config.RateLimitConfig, store FixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	limit := int64(cfg.RequestsPerSecond * 60)
	if limit < 1 {
		limit = 1
	}
	fallback := newClientLimiter(cfg.RequestsPerSecond, cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := UserIDFromContext(ctx)
			if key == "" {
				key = clientIP(r)
			}

			allowed := true
			if store != nil {
				var err error
				allowed, _, err = store.FixedWindowAllow(ctx, "account:"+key, limit, time.Minute)
				if err != nil {
					if logg != nil {
						logg.Warn(ctx, "rate_limit.store_unavailable")
					}
					allowed = fallback.get(key).Allow()
				}
			} else {
				allowed = fallback.get(key).Allow()
			}

			if !allowed {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
