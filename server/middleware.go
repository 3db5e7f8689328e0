package server

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/giygas/pharmacie-api/config"
	"github.com/giygas/pharmacie-api/handlers"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/metrics"
	"github.com/juju/ratelimit"
)

// RealIPMiddleware extracts the real IP from X-Forwarded-For header
func RealIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Take the first IP from the comma-separated list
			if idx := strings.Index(xff, ","); idx != -1 {
				xff = xff[:idx]
			}
			r.RemoteAddr = strings.TrimSpace(xff)
		}
		next.ServeHTTP(w, r)
	})
}

// RequestSizeMiddleware limits the size of request headers and body. The
// declared Content-Length is checked up front and the body itself is capped
// so a missing or lying header cannot get past the limit.
func RequestSizeMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > cfg.MaxRequestBody {
				logging.Warn("Request body too large",
					"content_length", r.ContentLength,
					"max_allowed", cfg.MaxRequestBody,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())
				handlers.RespondWithError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", cfg.MaxRequestBody))
				return
			}

			// Check header size (rough estimate)
			headerSize := int64(0)
			for key, values := range r.Header {
				headerSize += int64(len(key))
				for _, value := range values {
					headerSize += int64(len(value))
				}
			}
			if headerSize > cfg.MaxHeaderSize {
				logging.Warn("Request headers too large",
					"header_size", headerSize,
					"max_allowed", cfg.MaxHeaderSize,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())
				handlers.RespondWithError(w, http.StatusRequestHeaderFieldsTooLarge,
					fmt.Sprintf("Request headers too large. Maximum allowed size is %d bytes", cfg.MaxHeaderSize))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBody)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter manages per-client token buckets
type RateLimiter struct {
	clients  map[string]*ratelimit.Bucket
	mu       sync.RWMutex
	rate     float64
	capacity int64
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter refilling rate tokens per second up
// to capacity, and starts its cleanup loop.
func NewRateLimiter(rate, capacity int64) *RateLimiter {
	rl := &RateLimiter{
		clients:  make(map[string]*ratelimit.Bucket),
		rate:     float64(rate),
		capacity: capacity,
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop(30 * time.Minute)
	return rl
}

func (rl *RateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(rl.rate, rl.capacity)
			rl.clients[clientIP] = bucket
			metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
		}
		rl.mu.Unlock()
	}

	return bucket
}

func (rl *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup forgets clients whose bucket has refilled completely
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, ip)
		}
	}
	metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func getTokenCost(r *http.Request) int64 {
	path := r.URL.Path

	switch path {
	case "/health", "/metrics":
		return 5
	case "/auth/login":
		return 100 // expensive to slow down password guessing
	}

	switch {
	case strings.HasPrefix(path, "/medicaments/recherche/"):
		return 50
	case path == "/pharmacien/qualite":
		return 100
	case r.Method != http.MethodGet && r.Method != http.MethodHead:
		return 30
	}
	return 10
}

// Handler implements rate limiting using a token bucket per client IP
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	limit := strconv.FormatInt(rl.capacity, 10)
	rate := strconv.FormatFloat(rl.rate, 'f', -1, 64)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.RemoteAddr
		if host, _, err := net.SplitHostPort(clientIP); err == nil {
			clientIP = host
		}
		bucket := rl.getBucket(clientIP)
		tokenCost := getTokenCost(r)

		w.Header().Set("X-RateLimit-Limit", limit)
		w.Header().Set("X-RateLimit-Rate", rate)

		if bucket.TakeAvailable(tokenCost) < tokenCost {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			logging.Warn("Rate limit exceeded", "client_ip", clientIP, "path", r.URL.Path)
			handlers.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}
