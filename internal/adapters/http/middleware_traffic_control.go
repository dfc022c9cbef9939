package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/rag-processor/internal/config"
)

const defaultQueueTimeout = 200 * time.Millisecond

func queueTimeout(cfg config.Config) time.Duration {
	if cfg.APIQueueTimeoutMS <= 0 {
		return defaultQueueTimeout
	}
	return time.Duration(cfg.APIQueueTimeoutMS) * time.Millisecond
}

// rateLimitMiddleware applies a global token-bucket limit. A zero or
// negative rps disables the limiter.
func rateLimitMiddleware(next http.Handler, rps, burst int) http.Handler {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = rps
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			retryAfter := time.Second / time.Duration(rps)
			seconds := int(retryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// backpressureMiddleware bounds in-flight requests. A request waits up to
// the configured timeout for a slot, then is shed with 503.
func backpressureMiddleware(next http.Handler, maxInFlight int, wait time.Duration) http.Handler {
	if maxInFlight <= 0 {
		return next
	}
	slots := make(chan struct{}, maxInFlight)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case slots <- struct{}{}:
			defer func() { <-slots }()
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "request cancelled while waiting for capacity",
			})
		case <-timer.C:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "server is at capacity, try again later",
			})
		}
	})
}
