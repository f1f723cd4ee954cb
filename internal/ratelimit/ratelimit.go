package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter tracks and enforces request rate limits per client over a one
// minute and a one hour sliding window. A limit of zero disables that window.
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	enabled           bool
	now               func() time.Time

	// Request tracking, keyed by client
	clients map[string]*window
	mu      sync.Mutex
}

type window struct {
	minute []time.Time
	hour   []time.Time
}

// NewRateLimiter creates a new rate limiter with the given limits
func NewRateLimiter(requestsPerMinute, requestsPerHour int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		enabled:           enabled,
		now:               time.Now,
		clients:           make(map[string]*window),
	}
}

// AllowRequest records a request from client and reports whether it is
// within that client's limits. Rejected requests are not recorded.
func (rl *RateLimiter) AllowRequest(client string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)

	w, ok := rl.clients[client]
	if !ok {
		w = &window{}
	}
	if rl.requestsPerMinute > 0 && len(w.minute) >= rl.requestsPerMinute {
		return false
	}
	if rl.requestsPerHour > 0 && len(w.hour) >= rl.requestsPerHour {
		return false
	}

	w.minute = append(w.minute, now)
	w.hour = append(w.hour, now)
	rl.clients[client] = w
	return true
}

// cleanup removes expired entries and forgets clients with nothing left
func (rl *RateLimiter) cleanup(now time.Time) {
	for client, w := range rl.clients {
		w.minute = filterTimes(w.minute, now.Add(-time.Minute))
		w.hour = filterTimes(w.hour, now.Add(-time.Hour))
		if len(w.minute) == 0 && len(w.hour) == 0 {
			delete(rl.clients, client)
		}
	}
}

// filterTimes keeps only times after the cutoff. Entries are appended in
// order so the first one after the cutoff ends the scan.
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	for i, t := range times {
		if t.After(cutoff) {
			return times[i:]
		}
	}
	return nil
}

// Middleware rejects requests over the caller's limit with 429 Too Many
// Requests. Callers are told apart by gin's ClientIP, which honours the
// engine's trusted proxy settings.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.AllowRequest(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "upload rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}

// GetStats returns current rate limiter statistics summed over all clients
func (rl *RateLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(rl.now())

	stats := Stats{
		Enabled:        true,
		TrackedClients: len(rl.clients),
		LimitPerMinute: rl.requestsPerMinute,
		LimitPerHour:   rl.requestsPerHour,
	}
	for _, w := range rl.clients {
		stats.RequestsLastMinute += len(w.minute)
		stats.RequestsLastHour += len(w.hour)
	}
	return stats
}

// Stats contains rate limiter statistics. Limits apply per client; a zero
// limit means that window is unlimited.
type Stats struct {
	Enabled            bool `json:"enabled"`
	TrackedClients     int  `json:"trackedClients"`
	RequestsLastMinute int  `json:"requestsLastMinute"`
	RequestsLastHour   int  `json:"requestsLastHour"`
	LimitPerMinute     int  `json:"limitPerMinute"`
	LimitPerHour       int  `json:"limitPerHour"`
}

// Reset clears all tracked requests
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.clients = make(map[string]*window)
}
