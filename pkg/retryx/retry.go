// Package retryx runs calls to flaky collaborators with bounded exponential
// backoff.
package retryx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds a retry loop.
type Policy struct {
	// Attempts is the total number of calls, including the first
	Attempts uint64
	Base     time.Duration
	Max      time.Duration
}

// Default is three attempts starting at 200ms.
var Default = Policy{Attempts: 3, Base: 200 * time.Millisecond, Max: 2 * time.Second}

// Transient marks err as worth retrying. Errors that are not marked stop the
// loop immediately.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return retry.RetryableError(err)
}

// Do calls fn until it succeeds, returns a non-transient error, the policy is
// exhausted or ctx is done. Once the budget is spent the last transient error
// is returned without its marker.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.Attempts == 0 {
		p.Attempts = 1
	}
	if p.Base <= 0 {
		p.Base = Default.Base
	}

	b := retry.NewExponential(p.Base)
	if p.Max > 0 {
		b = retry.WithCappedDuration(p.Max, b)
	}
	b = retry.WithJitterPercent(10, b)
	b = retry.WithMaxRetries(p.Attempts-1, b)

	return retry.Do(ctx, b, fn)
}
