package api

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecoveryMiddleware catches panics and hands the request to onPanic.
// Panic details are logged but never exposed to the client.
func RecoveryMiddleware(onPanic http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if recovered == http.ErrAbortHandler {
						panic(recovered)
					}
					slog.Error("panic recovered",
						"error", recovered,
						"stack", string(debug.Stack()),
						"path", r.URL.Path,
						"method", r.Method,
					)
					onPanic(w, r)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// maxBuckets bounds the number of clients tracked by a RateLimiter.
const maxBuckets = 10000

// RateLimiter is a per-client token bucket. Each client may make burst
// requests at once and regains one request every refill interval.
type RateLimiter struct {
	burst  int
	refill time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter allowing burst requests per client,
// refilled at one token per refill interval.
func NewRateLimiter(burst int, refill time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if refill <= 0 {
		refill = time.Second
	}
	return &RateLimiter{
		burst:   burst,
		refill:  refill,
		now:     time.Now,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow takes a token for key. When none is left it reports how long
// until the next one.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	lim, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxBuckets {
			l.prune(now)
		}
		lim = rate.NewLimiter(rate.Every(l.refill), l.burst)
		l.buckets[key] = lim
	}

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, l.refill
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Sweep forgets clients whose buckets have refilled completely.
func (l *RateLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
}

// prune drops buckets that have refilled completely. Must hold l.mu.
func (l *RateLimiter) prune(now time.Time) {
	for k, lim := range l.buckets {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.buckets, k)
		}
	}
}

// Middleware limits requests per client IP. Rejected requests get a
// Retry-After header and are handed to deny.
func (l *RateLimiter) Middleware(deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Allow(clientIP(r))
			if !ok {
				slog.Warn("rate limit exceeded",
					"path", r.URL.Path,
					"remote_ip", r.RemoteAddr,
				)
				secs := int(math.Ceil(wait.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr, which middleware.RealIP
// has already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
