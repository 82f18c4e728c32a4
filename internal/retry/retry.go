// Package retry classifies remote-call failures and drives the backoff loop
// around transient ones. Fatal classes return immediately; transient classes
// are retried with capped exponential backoff until the attempt budget runs
// out.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// APIError is the failure shape produced by remote calls: an HTTP-like
// status code plus a diagnostic message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Kind labels terminal retry outcomes.
type Kind int

const (
	// KindUnauthorized marks credential or authorization failures (401/403).
	KindUnauthorized Kind = iota
	// KindClientError marks malformed requests (other 4xx); retrying cannot help.
	KindClientError
	// KindRetriesExhausted marks a transient failure that outlived the
	// attempt budget.
	KindRetriesExhausted
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindClientError:
		return "client_error"
	case KindRetriesExhausted:
		return "retries_exhausted"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the terminal error returned by Do. Status carries the last
// observed status code, zero when the failure never reached the remote end.
type Error struct {
	Kind     Kind
	Status   int
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s after %d attempt(s)", e.Kind, e.Attempts)
	}
	return fmt.Sprintf("%s after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether err should be retried. Network-level failures
// carry no status code and are treated as transient; 429 and 5xx likewise.
// Context cancellation is never transient.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return true
	case apiErr.StatusCode >= 500 && apiErr.StatusCode < 600:
		return true
	default:
		return false
	}
}

// fatalKind maps a non-transient remote failure to its terminal kind.
func fatalKind(apiErr *APIError) Kind {
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	default:
		return KindClientError
	}
}

// Policy configures the backoff loop. Attempt n (1-indexed) waits
// min(BaseDelay * 2^(n-1), MaxDelay) before the next call, randomized by up
// to half the delay in either direction when Jitter is set.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool

	// sleep is swappable so tests can observe the schedule without waiting.
	sleep func(context.Context, time.Duration) error
}

// DefaultPolicy matches the platform's published retry guidance.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Jitter:      true,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 250 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	return p
}

// Delay returns the backoff before retrying after the given 1-indexed
// failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay << uint(attempt-1)
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	if p.Jitter {
		delay = delay/2 + time.Duration(rand.Int64N(int64(delay)+1))
	}
	return delay
}

// Do executes call under the policy. It returns the value, the number of
// failed attempts that preceded it, and a terminal *Error when the call
// could not be satisfied. Backoff waits select on ctx and abort promptly.
func Do[T any](ctx context.Context, policy Policy, call func(context.Context) (T, error)) (T, int, error) {
	var zero T
	policy = policy.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, err
		}

		value, err := call(ctx)
		if err == nil {
			return value, attempt - 1, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, attempt - 1, ctxErr
		}

		if !Transient(err) {
			var apiErr *APIError
			status := 0
			kind := KindClientError
			if errors.As(err, &apiErr) {
				status = apiErr.StatusCode
				kind = fatalKind(apiErr)
			}
			return zero, attempt - 1, &Error{Kind: kind, Status: status, Attempts: attempt, Err: err}
		}

		if attempt == policy.MaxAttempts {
			break
		}
		if err := policy.sleep(ctx, policy.Delay(attempt)); err != nil {
			return zero, attempt - 1, err
		}
	}

	status := 0
	var apiErr *APIError
	if errors.As(lastErr, &apiErr) {
		status = apiErr.StatusCode
	}
	return zero, policy.MaxAttempts - 1, &Error{
		Kind:     KindRetriesExhausted,
		Status:   status,
		Attempts: policy.MaxAttempts,
		Err:      lastErr,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
