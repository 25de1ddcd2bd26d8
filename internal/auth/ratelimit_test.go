package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_CapacityWithinWindow(t *testing.T) {
	rl := NewRateLimiter(10*time.Second, 3)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"), "request N+1 within the window must be rejected")
}

func TestRateLimiter_NewWindowResets(t *testing.T) {
	rl := NewRateLimiter(10*time.Second, 2)

	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("k"))
	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))

	now = now.Add(11 * time.Second)
	assert.True(t, rl.Allow("k"), "first request of a fresh window must be allowed")
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(10*time.Second, 1)

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "a saturated key must not affect other keys")
}
