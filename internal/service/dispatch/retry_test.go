package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
)

func instantScheduler() *Scheduler {
	return NewSchedulerWithWait(func(context.Context, time.Duration) {})
}

func TestRunStopsAtFirstSuccess(t *testing.T) {
	var calls int
	result := instantScheduler().Run(context.Background(), 5, time.Second,
		func(_ context.Context, attempt int) model.DeliveryOutcome {
			calls++
			return model.DeliveryOutcome{Success: true, StatusCode: 200}
		})

	assert.Equal(t, RetrySucceeded, result.State)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestRunExhaustsAfterMaxAttempts(t *testing.T) {
	var calls int
	result := instantScheduler().Run(context.Background(), 3, time.Second,
		func(_ context.Context, attempt int) model.DeliveryOutcome {
			calls++
			assert.Equal(t, calls, attempt)
			return model.DeliveryOutcome{StatusCode: 500, Body: "boom"}
		})

	assert.Equal(t, RetryExhausted, result.State)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 500, result.Last.StatusCode)
}

func TestRunRecoversOnLaterAttempt(t *testing.T) {
	result := instantScheduler().Run(context.Background(), 3, time.Second,
		func(_ context.Context, attempt int) model.DeliveryOutcome {
			if attempt < 2 {
				return model.DeliveryOutcome{Error: "connection refused"}
			}
			return model.DeliveryOutcome{Success: true, StatusCode: 201}
		})

	assert.Equal(t, RetrySucceeded, result.State)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 201, result.Last.StatusCode)
}

func TestRunClampsNonPositiveBudget(t *testing.T) {
	var calls int
	result := instantScheduler().Run(context.Background(), 0, 0,
		func(context.Context, int) model.DeliveryOutcome {
			calls++
			return model.DeliveryOutcome{StatusCode: 503}
		})

	assert.Equal(t, RetryExhausted, result.State)
	assert.Equal(t, 1, calls)
}

func TestRunWaitsBetweenFailuresOnly(t *testing.T) {
	var waits int
	sched := NewSchedulerWithWait(func(_ context.Context, d time.Duration) {
		waits++
		assert.Equal(t, 2*time.Second, d)
	})

	sched.Run(context.Background(), 3, 2*time.Second,
		func(context.Context, int) model.DeliveryOutcome {
			return model.DeliveryOutcome{StatusCode: 500}
		})

	// No wait after the final attempt.
	assert.Equal(t, 2, waits)
}

func TestRetryStateString(t *testing.T) {
	assert.Equal(t, "pending", RetryPending.String())
	assert.Equal(t, "attempting", RetryAttempting.String())
	assert.Equal(t, "succeeded", RetrySucceeded.String())
	assert.Equal(t, "exhausted", RetryExhausted.String())
}
