package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), &ZeroBackoff{}, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Retry() = %v, want nil", err)
	}
	if calls != 3 {
		t.Fatalf("fn called %d times, want 3", calls)
	}
}

func TestRetryWithMaxAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("boom")
	err := Retry(context.Background(), WithMaxAttempts(&ZeroBackoff{}, 2), func() error {
		calls++
		return wantErr
	}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Retry() = %v, want %v", err, wantErr)
	}
	if calls != 2 {
		t.Fatalf("fn called %d times, want 2", calls)
	}
}

func TestRetryWithMaxDuration(t *testing.T) {
	start := time.Now()
	wantErr := errors.New("boom")
	err := Retry(context.Background(), WithMaxDuration(NewConstantBackoff(10*time.Millisecond), 30*time.Millisecond), func() error {
		return wantErr
	}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Retry() = %v, want %v", err, wantErr)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Retry ran too long")
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, NewConstantBackoff(time.Hour), func() error {
		return errors.New("always fails")
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Retry() = %v, want context.Canceled", err)
	}
}

func TestNotifyCalled(t *testing.T) {
	var notified []error
	calls := 0
	_ = Retry(context.Background(), WithMaxAttempts(&ZeroBackoff{}, 3), func() error {
		calls++
		if calls < 3 {
			return errors.New("retryable")
		}
		return nil
	}, func(err error, _ time.Duration) {
		notified = append(notified, err)
	})
	if len(notified) != 2 {
		t.Fatalf("notify called %d times, want 2", len(notified))
	}
}
