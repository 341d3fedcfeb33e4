package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	ActionSendMessage = "send_message"
	ActionOpenRoom    = "open_room"
	ActionUpload      = "upload"
	ActionSignIn      = "sign_in"
)

// Limit describes a bucket: Burst tokens, one token back every Interval.
type Limit struct {
	Burst    int
	Interval time.Duration
}

// PerMinute spreads n actions evenly over a minute.
func PerMinute(n int) Limit {
	if n <= 0 {
		n = 1
	}
	return Limit{Burst: n, Interval: time.Minute / time.Duration(n)}
}

var defaultLimit = PerMinute(20)

type TokenBucket struct {
	tokens     int
	limit      Limit
	lastRefill time.Time
	lastUsed   time.Time
	mutex      sync.Mutex
}

func newTokenBucket(limit Limit, now time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:     limit.Burst,
		limit:      limit,
		lastRefill: now,
		lastUsed:   now,
	}
}

// allow consumes a token if one is available; otherwise it reports how long
// until the next one.
func (tb *TokenBucket) allow(now time.Time) (bool, time.Duration) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.lastUsed = now
	if refill := int(now.Sub(tb.lastRefill) / tb.limit.Interval); refill > 0 {
		tb.tokens += refill
		if tb.tokens > tb.limit.Burst {
			tb.tokens = tb.limit.Burst
		}
		tb.lastRefill = tb.lastRefill.Add(time.Duration(refill) * tb.limit.Interval)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}
	return false, tb.lastRefill.Add(tb.limit.Interval).Sub(now)
}

// RateLimiter keeps one bucket per user and action.
type RateLimiter struct {
	limits  map[string]Limit
	buckets map[string]*TokenBucket
	mutex   sync.RWMutex
	now     func() time.Time
}

func NewRateLimiter(limits map[string]Limit) *RateLimiter {
	rl := &RateLimiter{
		limits: map[string]Limit{
			ActionSendMessage: PerMinute(10),
			ActionOpenRoom:    PerMinute(20),
			ActionUpload:      PerMinute(10),
			ActionSignIn:      PerMinute(5),
		},
		buckets: make(map[string]*TokenBucket),
		now:     time.Now,
	}
	for action, limit := range limits {
		rl.limits[action] = limit
	}
	return rl
}

func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := rl.now()

	rl.mutex.RLock()
	bucket, exists := rl.buckets[key]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		if bucket, exists = rl.buckets[key]; !exists {
			limit, ok := rl.limits[action]
			if !ok {
				limit = defaultLimit
			}
			bucket = newTokenBucket(limit, now)
			rl.buckets[key] = bucket
		}
		rl.mutex.Unlock()
	}

	return bucket.allow(now)
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, bucket := range rl.buckets {
		bucket.mutex.Lock()
		idle := now.Sub(bucket.lastUsed)
		bucket.mutex.Unlock()
		if idle > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

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
