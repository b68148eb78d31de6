package retry

import "time"

// Attempts beyond this no longer grow the delay; it keeps the shift from
// overflowing and bounds worst-case waits for rate-limited LLM calls.
const maxShift = 6

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt: base * 2^attempt, capped at 2^6.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	return base * (1 << attempt)
}
