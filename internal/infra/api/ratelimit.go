package api

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"razorpay-relay/internal/config"
	"razorpay-relay/internal/infra/logging"
	"razorpay-relay/internal/infra/metrics"
	red "razorpay-relay/internal/infra/redis"

	"github.com/rs/zerolog"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (red.Decision, error)
}

// RateLimit applies a per-client fixed window and sets the RateLimit-* headers.
// When the limiter itself fails the request is let through.
func RateLimit(limiter RateLimiter, cfg config.RateLimitConfig, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			d, err := limiter.Allow(r.Context(), red.ClientKey(ip), cfg.MaxRequests, cfg.Window)
			if err != nil {
				l := logging.With(r.Context(), logger)
				l.Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			reset := strconv.Itoa(int(math.Ceil(d.Reset.Seconds())))
			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("RateLimit-Reset", reset)

			if !d.Allowed {
				metrics.IncRateLimited()
				h.Set("Retry-After", reset)
				writeJSON(w, http.StatusTooManyRequests, errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects RemoteAddr to have been rewritten by middleware.RealIP already.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
