package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/crucial707/timetable/internal/models"
)

// idleBucketTTL is how long an unused bucket is kept before it is evicted.
const idleBucketTTL = 10 * time.Minute

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucketEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time

	// TrustProxy makes the limiter key on X-Forwarded-For / X-Real-IP. Enable it only when a
	// reverse proxy that overwrites those headers sits in front of the API.
	TrustProxy bool
}

// NewIPRateLimiter allows limit events per second per IP with the given burst.
// For N per minute use rate.Limit(float64(N)/60.0).
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		buckets: make(map[string]*bucketEntry),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// AuthRateLimiter is the limiter for register/login/deregister: 10 requests per minute per IP, burst 5.
func AuthRateLimiter(trustProxy bool) *IPRateLimiter {
	l := NewIPRateLimiter(rate.Limit(10.0/60.0), 5)
	l.TrustProxy = trustProxy
	return l
}

func (l *IPRateLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= idleBucketTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) >= idleBucketTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucketEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter
}

// size reports the number of live buckets.
func (l *IPRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// clientIP returns the socket address host. Behind a trusted proxy it prefers the first
// X-Forwarded-For hop, then X-Real-IP.
func (l *IPRateLimiter) clientIP(r *http.Request) string {
	if l.TrustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware answers 429 once the client IP has spent its bucket.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.bucket(l.clientIP(r)).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(models.Outcome{Message: "too many requests", Status: models.StatusFailed})
			return
		}
		next.ServeHTTP(w, r)
	})
}
