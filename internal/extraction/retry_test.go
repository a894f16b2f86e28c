package extraction

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), 3, time.Millisecond, "test", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	last := errors.New("persistent")
	calls := 0
	_, err := Retry(context.Background(), 3, time.Millisecond, "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, last
	})
	if !errors.Is(err, last) {
		t.Fatalf("got %v want last error", err)
	}
	if calls != 3 {
		t.Fatalf("op called %d times, want 3", calls)
	}
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, 5, time.Hour, "test", func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
}

func TestRetryAtLeastOnce(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), 0, time.Millisecond, "test", func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	})
	if err != nil || got != 7 || calls != 1 {
		t.Fatalf("got %d err=%v after %d calls", got, err, calls)
	}
}
