// Package ratelimiter implements keyed token buckets.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. Buckets idle for longer than
// the expiration are forgotten, so a returning key starts with a full bucket.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64 // tokens per second
	capacity   float64
	expiration time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New starts a limiter refilling rate tokens per second up to capacity.
func New(rate float64, capacity float64, expiration time.Duration) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		stop:       make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow takes a token from key's bucket if one is available.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.lastSeen) >= l.expiration {
		b = &bucket{tokens: l.capacity}
		l.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop ends the background sweep.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.expiration)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, b := range l.buckets {
				if now.Sub(b.lastSeen) >= l.expiration {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func OnceInSecond() *Limiter {
	return New(1, 1, time.Hour)
}

func OnceInMinute() *Limiter {
	return New(1.0/60, 1, time.Hour)
}

func Rps100() *Limiter {
	return New(100, 100, time.Hour)
}
