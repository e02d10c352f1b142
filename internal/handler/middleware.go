package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// RateLimiter provides IP-based rate limiting using a sliding window.
type RateLimiter struct {
	maxPerWindow      int
	window            time.Duration
	trustedProxyCount int
	now               func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithTrustedProxies sets how many reverse proxies append to X-Forwarded-For.
// Zero ignores the header.
func WithTrustedProxies(n int) RateLimiterOption {
	return func(rl *RateLimiter) { rl.trustedProxyCount = n }
}

// WithRateClock replaces time.Now.
func WithRateClock(fn func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) { rl.now = fn }
}

// NewRateLimiter creates a rate limiter with the given requests-per-minute limit.
// Assumes a single trusted reverse proxy by default. Call Close to stop the
// background cleanup.
func NewRateLimiter(maxPerMinute int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		maxPerWindow:      maxPerMinute,
		window:            time.Minute,
		trustedProxyCount: 1,
		now:               time.Now,
		clients:           make(map[string][]time.Time),
		stop:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}
	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

// prune drops timestamps outside the window and forgets idle clients.
func (rl *RateLimiter) prune() {
	windowStart := rl.now().Add(-rl.window)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, ts := range rl.clients {
		ts = recent(ts, windowStart)
		if len(ts) == 0 {
			delete(rl.clients, ip)
			continue
		}
		rl.clients[ip] = ts
	}
}

// Tracked reports how many client IPs currently have a window.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// in-place filter on the shared backing array
func recent(ts []time.Time, after time.Time) []time.Time {
	valid := ts[:0]
	for _, t := range ts {
		if t.After(after) {
			valid = append(valid, t)
		}
	}
	return valid
}

// allow records a request from ip. When the window is full it returns
// false and how long until the oldest request leaves it.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	ts := recent(rl.clients[ip], now.Add(-rl.window))
	if len(ts) >= rl.maxPerWindow {
		rl.clients[ip] = ts
		return false, ts[0].Add(rl.window).Sub(now)
	}
	rl.clients[ip] = append(ts, now)
	return true, 0
}

// Middleware returns an http.Handler that enforces rate limits.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.clientIP(r)
		ok, retryAfter := rl.allow(ip)
		if !ok {
			slog.Info("rate limited", "path", r.URL.Path, "ip", ip)
			w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP extracts the real client IP, reading from the rightmost trusted
// proxy position in X-Forwarded-For to prevent spoofing.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && rl.trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		idx := len(parts) - rl.trustedProxyCount
		if idx >= 0 && idx < len(parts) {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
