package extraction

import (
	"testing"
	"time"
)

func TestRequestLimiterSpacesCalls(t *testing.T) {
	limiter := newRequestLimiter(100)

	start := time.Now()
	for i := 0; i < 4; i++ {
		limiter.WaitTurn()
	}
	elapsed := time.Since(start)

	// 4 turns at 100 rps need at least 3 intervals of 10ms
	if elapsed < 30*time.Millisecond {
		t.Fatalf("4 turns took %v, expected at least 30ms", elapsed)
	}
}

func TestRequestLimiterGuardsZeroRate(t *testing.T) {
	limiter := newRequestLimiter(0)
	if limiter.interval != time.Second {
		t.Fatalf("interval %v want 1s", limiter.interval)
	}
}
