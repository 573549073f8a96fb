package imagegen

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RateLimitError is the transient throttling failure. RetryAfter is zero when
// the service gave no explicit wait signal.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("image service rate limited, retry after %s: %s", e.RetryAfter, e.Message)
	}
	return "image service rate limited: " + e.Message
}

// PaymentError is the fatal credit-exhaustion failure; it is never retried.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	return "image service requires payment or credits: " + e.Message
}

var resetsInRe = regexp.MustCompile(`resets? in (\d+) seconds?`)

// rateLimitInfo classifies an error as a definite rate-limit signal and
// extracts the best wait hint: an explicit retry-after wins, then a
// "resets in N seconds" message hint, else zero.
func rateLimitInfo(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	var rle *RateLimitError
	if errors.As(err, &rle) {
		if rle.RetryAfter > 0 {
			return rle.RetryAfter, true
		}
		return messageHint(rle.Message), true
	}

	msg := strings.ToLower(err.Error())
	throttled := strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "429")
	if !throttled {
		return 0, false
	}
	return messageHint(msg), true
}

// messageHint extracts a "resets in N seconds" wait from throttle message text.
func messageHint(msg string) time.Duration {
	if m := resetsInRe.FindStringSubmatch(strings.ToLower(msg)); m != nil {
		if secs, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}
