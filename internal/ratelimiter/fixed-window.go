package ratelimiter

import (
	"sync"
	"time"
)

type clientWindow struct {
	count       int
	windowStart time.Time
}

// FixedWindowRateLimiter counts requests per client within a timestamped
// window. The count and the window boundary are checked and advanced under
// one lock, so the limit cannot be exceeded by concurrent requests.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
}

func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, exists := rl.clients[ip]
	if !exists || now.Sub(cw.windowStart) >= rl.window {
		if !exists && len(rl.clients) >= purgeThreshold {
			rl.purgeExpired(now)
		}
		cw = &clientWindow{windowStart: now}
		rl.clients[ip] = cw
	}

	if cw.count < rl.limit {
		cw.count++
		return true, 0
	}

	return false, rl.window - now.Sub(cw.windowStart)
}

// purgeThreshold bounds the client map: once it grows this large, expired
// windows are swept before a new client is admitted.
const purgeThreshold = 1024

func (rl *FixedWindowRateLimiter) purgeExpired(now time.Time) {
	for ip, cw := range rl.clients {
		if now.Sub(cw.windowStart) >= rl.window {
			delete(rl.clients, ip)
		}
	}
}
