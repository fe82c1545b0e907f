package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(3)

	for i := 0; i < 3; i++ {
		ok, wait := rl.Allow("me@x.io", ActionSendMessage)
		assert.True(t, ok)
		assert.Zero(t, wait)
	}

	ok, wait := rl.Allow("me@x.io", ActionSendMessage)
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	// other users and actions have their own buckets
	ok, _ = rl.Allow("other@x.io", ActionSendMessage)
	assert.True(t, ok)
	ok, _ = rl.Allow("me@x.io", ActionAuth)
	assert.True(t, ok)
}

func TestRejectedCallDoesNotConsume(t *testing.T) {
	rl := NewRateLimiter(1)

	ok, _ := rl.Allow("u", ActionSendMessage)
	assert.True(t, ok)

	for i := 0; i < 5; i++ {
		ok, _ = rl.Allow("u", ActionSendMessage)
		assert.False(t, ok)
	}

	tokens, max := rl.GetStatus("u", ActionSendMessage)
	assert.Equal(t, 1, max)
	assert.LessOrEqual(t, tokens, 0)
}

func TestCleanup(t *testing.T) {
	rl := NewRateLimiter(0)
	rl.Allow("u", "unknown_action")
	assert.Equal(t, 1, rl.size())

	rl.Cleanup(time.Hour)
	assert.Equal(t, 1, rl.size())

	rl.Cleanup(-time.Second)
	assert.Equal(t, 0, rl.size())

	tokens, max := rl.GetStatus("u", "unknown_action")
	assert.Zero(t, tokens)
	assert.Zero(t, max)
}
