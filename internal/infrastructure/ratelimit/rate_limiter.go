package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionCreateChat  = "create_chat"
	ActionAuth        = "auth"
)

// Policy is a burst of Burst actions refilled evenly over Per.
type Policy struct {
	Burst int
	Per   time.Duration
}

func (p Policy) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(p.Per/time.Duration(p.Burst)), p.Burst)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages rate limiting for different users and actions
type RateLimiter struct {
	policies map[string]Policy
	fallback Policy

	buckets map[string]*bucket
	mutex   sync.Mutex
}

// NewRateLimiter creates a limiter allowing messagesPerMinute chat messages per user.
func NewRateLimiter(messagesPerMinute int) *RateLimiter {
	if messagesPerMinute <= 0 {
		messagesPerMinute = 10
	}
	return &RateLimiter{
		policies: map[string]Policy{
			ActionSendMessage: {Burst: messagesPerMinute, Per: time.Minute},
			ActionCreateChat:  {Burst: 5, Per: time.Hour},
			ActionAuth:        {Burst: 20, Per: time.Minute},
		},
		fallback: Policy{Burst: 20, Per: time.Minute},
		buckets:  make(map[string]*bucket),
	}
}

// Allow consumes one token for the key and action. When none is available it returns
// false and the time until one will be.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	b := rl.bucket(key, action)

	reservation := b.limiter.Reserve()
	if !reservation.OK() {
		return false, time.Minute
	}
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}

// GetStatus returns the remaining tokens and the burst size for a key and action.
func (rl *RateLimiter) GetStatus(key, action string) (tokens int, maxTokens int) {
	rl.mutex.Lock()
	b, exists := rl.buckets[key+":"+action]
	rl.mutex.Unlock()

	if !exists {
		return 0, 0
	}
	return int(b.limiter.Tokens()), b.limiter.Burst()
}

func (rl *RateLimiter) bucket(key, action string) *bucket {
	id := key + ":" + action

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	b, exists := rl.buckets[id]
	if !exists {
		policy, ok := rl.policies[action]
		if !ok {
			policy = rl.fallback
		}
		b = &bucket{limiter: policy.limiter()}
		rl.buckets[id] = b
	}
	b.lastSeen = time.Now()
	return b
}

// Cleanup removes buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine prunes idle buckets every 30 minutes until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			}
		}
	}()
}

func (rl *RateLimiter) size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}
