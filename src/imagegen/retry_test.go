package imagegen

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fakeSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestWithRetryHonorsRetryAfter(t *testing.T) {
	var waits []time.Duration
	calls := 0
	fn := func(context.Context) ([]byte, string, error) {
		calls++
		if calls == 1 {
			return nil, "", &RateLimitError{RetryAfter: 2 * time.Second}
		}
		return []byte("ok"), "image/png", nil
	}

	data, mime, err := WithRetry(context.Background(), RetryOptions{Sleep: fakeSleep(&waits)}, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "ok" || mime != "image/png" {
		t.Fatalf("result lost through retry: %q %q", data, mime)
	}
	if len(waits) != 1 || waits[0] != 2*time.Second {
		t.Fatalf("explicit retry-after should win over the default wait: %v", waits)
	}
}

func TestWithRetryMessageHint(t *testing.T) {
	var waits []time.Duration
	calls := 0
	fn := func(context.Context) ([]byte, string, error) {
		calls++
		if calls == 1 {
			return nil, "", errors.New("429 too many requests; quota resets in 7 seconds")
		}
		return nil, "", nil
	}

	if _, _, err := WithRetry(context.Background(), RetryOptions{Sleep: fakeSleep(&waits)}, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waits) != 1 || waits[0] != 7*time.Second {
		t.Fatalf("message hint should set the wait: %v", waits)
	}
}

func TestWithRetryTypedErrorMessageHint(t *testing.T) {
	// A typed throttle without an explicit retry-after still carries its
	// message hint; the default wait applies only when both are absent.
	var waits []time.Duration
	calls := 0
	fn := func(context.Context) ([]byte, string, error) {
		calls++
		if calls == 1 {
			return nil, "", &RateLimitError{Message: "quota resets in 30 seconds"}
		}
		return nil, "", nil
	}

	if _, _, err := WithRetry(context.Background(), RetryOptions{Sleep: fakeSleep(&waits)}, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waits) != 1 || waits[0] != 30*time.Second {
		t.Fatalf("typed error message hint should set the wait: %v", waits)
	}
}

func TestWithRetryDefaultWait(t *testing.T) {
	var waits []time.Duration
	calls := 0
	fn := func(context.Context) ([]byte, string, error) {
		calls++
		if calls == 1 {
			return nil, "", &RateLimitError{Message: "slow down"}
		}
		return nil, "", nil
	}

	if _, _, err := WithRetry(context.Background(), RetryOptions{Sleep: fakeSleep(&waits)}, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waits) != 1 || waits[0] != 15*time.Second {
		t.Fatalf("hint-less throttle should wait the default 15s: %v", waits)
	}
}

func TestWithRetryClampsWait(t *testing.T) {
	var waits []time.Duration
	calls := 0
	fn := func(context.Context) ([]byte, string, error) {
		calls++
		if calls == 1 {
			return nil, "", &RateLimitError{RetryAfter: 10 * time.Minute}
		}
		return nil, "", nil
	}

	if _, _, err := WithRetry(context.Background(), RetryOptions{Sleep: fakeSleep(&waits)}, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waits) != 1 || waits[0] != 60*time.Second {
		t.Fatalf("wait must clamp to 60s: %v", waits)
	}
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	var waits []time.Duration
	calls := 0
	fn := func(context.Context) ([]byte, string, error) {
		calls++
		return nil, "", &RateLimitError{Message: "always"}
	}

	_, _, err := WithRetry(context.Background(), RetryOptions{MaxRetries: 2, Sleep: fakeSleep(&waits)}, fn)
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("final throttle must propagate unchanged, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected initial attempt plus 2 retries, got %d calls", calls)
	}
	if len(waits) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(waits))
	}
}

func TestWithRetryNonTransientPassesThrough(t *testing.T) {
	var waits []time.Duration
	calls := 0
	boom := errors.New("invalid prompt")
	fn := func(context.Context) ([]byte, string, error) {
		calls++
		return nil, "", boom
	}

	_, _, err := WithRetry(context.Background(), RetryOptions{Sleep: fakeSleep(&waits)}, fn)
	if !errors.Is(err, boom) {
		t.Fatalf("non-throttle error should pass through: %v", err)
	}
	if calls != 1 || len(waits) != 0 {
		t.Fatalf("non-throttle errors must not retry: calls=%d waits=%v", calls, waits)
	}
}

func TestWithRetryPaymentErrorNotRetried(t *testing.T) {
	calls := 0
	fn := func(context.Context) ([]byte, string, error) {
		calls++
		return nil, "", &PaymentError{Message: "no credits"}
	}

	_, _, err := WithRetry(context.Background(), RetryOptions{}, fn)
	var pe *PaymentError
	if !errors.As(err, &pe) {
		t.Fatalf("expected payment error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("payment errors must not retry, got %d calls", calls)
	}
}

func TestRateLimitInfo(t *testing.T) {
	if _, ok := rateLimitInfo(nil); ok {
		t.Fatalf("nil is not a throttle")
	}
	if _, ok := rateLimitInfo(errors.New("resource exhausted")); !ok {
		t.Fatalf("resource exhausted should classify as throttle")
	}
	hint, ok := rateLimitInfo(errors.New("rate limit: resets in 30 seconds"))
	if !ok || hint != 30*time.Second {
		t.Fatalf("message hint not extracted: %v %v", hint, ok)
	}
}
