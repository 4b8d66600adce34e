package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig holds rate limiting configuration for mutating endpoints.
type RateLimitConfig struct {
	MaxRequests int           // Maximum requests per window (default: 30)
	Window      time.Duration // Sliding window length (default: 1 minute)
}

// DefaultRateLimitConfig returns the default rate limiting configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 30,
		Window:      time.Minute,
	}
}

// rateLimiter implements a per-IP sliding window.
type rateLimiter struct {
	mu     sync.Mutex
	config RateLimitConfig

	// attempts tracks request timestamps per IP within the window.
	attempts map[string][]time.Time
}

func newRateLimiter(config RateLimitConfig) *rateLimiter {
	if config.MaxRequests <= 0 {
		config.MaxRequests = DefaultRateLimitConfig().MaxRequests
	}
	if config.Window <= 0 {
		config.Window = DefaultRateLimitConfig().Window
	}
	return &rateLimiter{
		config:   config,
		attempts: make(map[string][]time.Time),
	}
}

// checkResult represents the result of a rate limit check.
type checkResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// check records a request from ip and reports whether it is allowed.
func (rl *rateLimiter) check(ip string) checkResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.config.Window)

	valid := rl.attempts[ip][:0]
	for _, ts := range rl.attempts[ip] {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	rl.attempts[ip] = valid

	if len(valid) >= rl.config.MaxRequests {
		retryAfter := valid[0].Add(rl.config.Window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return checkResult{Allowed: false, RetryAfter: retryAfter}
	}

	rl.attempts[ip] = append(rl.attempts[ip], now)
	return checkResult{Allowed: true}
}

// cleanup drops IPs with no requests in the current window.
func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := time.Now().Add(-rl.config.Window)
	for ip, timestamps := range rl.attempts {
		valid := timestamps[:0]
		for _, ts := range timestamps {
			if ts.After(windowStart) {
				valid = append(valid, ts)
			}
		}
		if len(valid) == 0 {
			delete(rl.attempts, ip)
		} else {
			rl.attempts[ip] = valid
		}
	}
}

// extractIP extracts the client IP from the request. X-Forwarded-For and
// X-Real-IP take precedence for reverse proxy deployments.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can be "client, proxy1, proxy2".
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
