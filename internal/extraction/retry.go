package extraction

import (
	"context"
	"log"
	"time"
)

// Retry runs op up to attempts times, doubling the delay between tries.
// The last error is returned once attempts are exhausted. Sleep is
// context-aware so an abandoned request does not keep a goroutine waiting.
func Retry[T any](ctx context.Context, attempts int, baseDelay time.Duration, name string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			log.Printf("[%s] retry attempt %d/%d", name, i+1, attempts)
		}
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("[%s] attempt %d/%d failed: %v", name, i+1, attempts, err)

		if i == attempts-1 {
			break
		}
		delay := baseDelay * (1 << i)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, lastErr
}
