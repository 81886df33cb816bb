package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter keeps a token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 50
	}
	if burst <= 0 {
		burst = int(rps)
	}
	return &RateLimiter{visitors: map[string]*rate.Limiter{}, rps: rate.Limit(rps), burst: burst}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if lim, ok := rl.visitors[ip]; ok {
		return lim
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[ip] = lim
	// Expire the bucket so idle IPs do not accumulate.
	go func() {
		time.Sleep(10 * time.Minute)
		rl.mu.Lock()
		delete(rl.visitors, ip)
		rl.mu.Unlock()
	}()
	return lim
}

// Limit wraps a handler with per-IP rate limiting.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.getLimiter(ip).Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Too many requests", "", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}
