package dispatch

import (
	"context"
	"time"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
)

// RetryState is the terminal state of one retry sequence.
type RetryState int

const (
	RetryPending RetryState = iota
	RetryAttempting
	RetrySucceeded
	RetryExhausted
)

func (s RetryState) String() string {
	switch s {
	case RetryPending:
		return "pending"
	case RetryAttempting:
		return "attempting"
	case RetrySucceeded:
		return "succeeded"
	case RetryExhausted:
		return "exhausted"
	}
	return "unknown"
}

// AttemptFunc performs one delivery attempt. The attempt number starts
// at 1.
type AttemptFunc func(ctx context.Context, attempt int) model.DeliveryOutcome

// RetryResult carries the terminal state of a sequence plus the outcome of
// its final attempt.
type RetryResult struct {
	State    RetryState
	Attempts int
	Last     model.DeliveryOutcome
}

// Scheduler drives bounded retry sequences. The wait between attempts is a
// timer, not a sleep loop holding resources; cancellation of ctx ends the
// wait early.
type Scheduler struct {
	wait func(ctx context.Context, d time.Duration)
}

func NewScheduler() *Scheduler {
	return &Scheduler{wait: waitTimer}
}

// NewSchedulerWithWait overrides the delay mechanism. Used by tests.
func NewSchedulerWithWait(wait func(ctx context.Context, d time.Duration)) *Scheduler {
	return &Scheduler{wait: wait}
}

// Run invokes fn up to maxAttempts times, waiting delay between failed
// attempts. It stops at the first success. Exhaustion is terminal and
// silent; the caller sees it only through the returned state.
func (s *Scheduler) Run(ctx context.Context, maxAttempts int, delay time.Duration, fn AttemptFunc) RetryResult {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	result := RetryResult{State: RetryPending}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.State = RetryAttempting
		result.Attempts = attempt
		result.Last = fn(ctx, attempt)

		if result.Last.Success {
			result.State = RetrySucceeded
			return result
		}
		if attempt < maxAttempts && delay > 0 {
			s.wait(ctx, delay)
		}
	}

	result.State = RetryExhausted
	return result
}

func waitTimer(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
