package extraction

import (
	"sync"
	"time"
)

// requestLimiter spaces outbound model calls to a fixed requests-per-second
// budget. Callers block in WaitTurn until their slot comes up.
type requestLimiter struct {
	mu            sync.Mutex
	nextAllowedAt time.Time
	interval      time.Duration
}

func newRequestLimiter(requestsPerSecond int) *requestLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &requestLimiter{interval: time.Second / time.Duration(requestsPerSecond)}
}

func (r *requestLimiter) WaitTurn() {
	r.mu.Lock()
	now := time.Now()
	scheduled := now
	if r.nextAllowedAt.After(now) {
		scheduled = r.nextAllowedAt
	}
	r.nextAllowedAt = scheduled.Add(r.interval)
	r.mu.Unlock()

	if sleep := time.Until(scheduled); sleep > 0 {
		time.Sleep(sleep)
	}
}
