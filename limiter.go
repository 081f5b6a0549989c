package sitebridge

import (
	"sync"
	"time"
)

// loginLimiter rate-limits admin login attempts per IP address.
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
}

// newLoginLimiter creates a loginLimiter that allows max attempts per window.
func newLoginLimiter(max int, window time.Duration) *loginLimiter {
	l := &loginLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
	}
	go l.cleanup()
	return l
}

func (l *loginLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	for range ticker.C {
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for ip, hits := range l.attempts {
			kept := hits[:0]
			for _, t := range hits {
				if t.After(cutoff) {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(l.attempts, ip)
			} else {
				l.attempts[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

// Check reports whether the IP is under the limit. It does not record an
// attempt; only failures count against the budget, so successful logins
// never lock an address out.
func (l *loginLimiter) Check(ip string) bool {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.prune(ip, cutoff)
	return len(kept) < l.max
}

// Record registers a failed attempt for the IP.
func (l *loginLimiter) Record(ip string) {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts[ip] = append(l.prune(ip, cutoff), time.Now())
}

// prune drops attempts older than cutoff. Caller holds the lock.
func (l *loginLimiter) prune(ip string, cutoff time.Time) []time.Time {
	hits := l.attempts[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.attempts[ip] = kept
	return kept
}
