package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idle client buckets are dropped after this long
const limiterIdleTTL = 5 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per client host.
type RateLimitMiddleware struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket

	limit        rate.Limit
	burst        int
	trustProxies bool

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimitMiddleware allows rps requests per second with the given burst to each client.
// When trustProxies is set, the first X-Forwarded-For hop identifies the client;
// otherwise the header is ignored and the connection's host is used.
func NewRateLimitMiddleware(rps float64, burst int, trustProxies bool) *RateLimitMiddleware {
	rl := &RateLimitMiddleware{
		buckets:      make(map[string]*clientBucket),
		limit:        rate.Limit(rps),
		burst:        burst,
		trustProxies: trustProxies,
		done:         make(chan struct{}),
	}

	go rl.evictIdle()
	return rl
}

// Stop stops the background eviction of idle clients.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimitMiddleware) evictIdle() {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.lastSeen) > limiterIdleTTL {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimitMiddleware) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[client] = b
	}
	b.lastSeen = time.Now()

	return b.limiter.Allow()
}

// clientKey identifies the client of r without the source port.
func (rl *RateLimitMiddleware) clientKey(r *http.Request) string {
	if rl.trustProxies {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(rl.clientKey(r)) {
			JSONError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
