package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const client = "192.0.2.1"

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(perMinute, perHour int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(perMinute, perHour, true)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiter_MinuteWindow(t *testing.T) {
	rl, clock := newTestLimiter(2, 0)

	assert.True(t, rl.AllowRequest(client))
	assert.True(t, rl.AllowRequest(client))
	assert.False(t, rl.AllowRequest(client))

	clock.advance(61 * time.Second)
	assert.True(t, rl.AllowRequest(client))
}

func TestRateLimiter_HourWindow(t *testing.T) {
	rl, clock := newTestLimiter(10, 3)

	for i := 0; i < 3; i++ {
		require.True(t, rl.AllowRequest(client))
		clock.advance(2 * time.Minute)
	}
	assert.False(t, rl.AllowRequest(client))

	stats := rl.GetStats()
	assert.Equal(t, 3, stats.RequestsLastHour)
	assert.Equal(t, 0, stats.RequestsLastMinute)
	assert.Equal(t, 1, stats.TrackedClients)

	clock.advance(time.Hour)
	assert.True(t, rl.AllowRequest(client))
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl, clock := newTestLimiter(1, 0)

	require.True(t, rl.AllowRequest(client))
	assert.False(t, rl.AllowRequest(client))
	assert.True(t, rl.AllowRequest("198.51.100.7"))
	assert.False(t, rl.AllowRequest("198.51.100.7"))

	stats := rl.GetStats()
	assert.Equal(t, 2, stats.TrackedClients)
	assert.Equal(t, 2, stats.RequestsLastMinute)

	// Idle clients are forgotten once their windows empty
	clock.advance(time.Hour + time.Second)
	assert.Equal(t, 0, rl.GetStats().TrackedClients)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(1, 1, false)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.AllowRequest(client))
	}
	assert.False(t, rl.GetStats().Enabled)
}

func TestRateLimiter_Reset(t *testing.T) {
	rl, _ := newTestLimiter(1, 0)
	require.True(t, rl.AllowRequest(client))
	require.False(t, rl.AllowRequest(client))

	rl.Reset()
	assert.Equal(t, 0, rl.GetStats().TrackedClients)
	assert.True(t, rl.AllowRequest(client))
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newTestLimiter(1, 0)

	r := gin.New()
	r.POST("/upload", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post("192.0.2.1:5000").Code)

	w := post("192.0.2.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// A different client has its own budget
	assert.Equal(t, http.StatusCreated, post("198.51.100.7:5000").Code)
}
