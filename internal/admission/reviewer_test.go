package admission

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"trustlist_backend/config"
	"trustlist_backend/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedReviewerApprovesAndRejects(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	reviewer := NewSimulatedReviewer(fake, rand.New(rand.NewSource(42)), config.ReviewPolicy{
		ApprovalRate: 0.8,
		Delay:        3 * time.Second,
	})

	type resolved struct {
		outcome ReviewOutcome
		err     error
	}
	done := make(chan resolved, 1)
	go func() {
		outcome, err := reviewer.Review(context.Background(), 1)
		done <- resolved{outcome, err}
	}()

	// Nothing resolves until the review delay elapses.
	select {
	case <-done:
		t.Fatal("review resolved before the delay elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	fake.Advance(3 * time.Second)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		if res.outcome.Approved {
			assert.Empty(t, res.outcome.Reasons)
		} else {
			assert.Equal(t, RejectionReasons, res.outcome.Reasons)
		}
	case <-time.After(time.Second):
		t.Fatal("review did not resolve after advancing the clock")
	}
}

func TestSimulatedReviewerApprovalRate(t *testing.T) {
	fake := clock.NewFake(time.Now())
	reviewer := NewSimulatedReviewer(fake, rand.New(rand.NewSource(7)), config.ReviewPolicy{
		ApprovalRate: 0.8,
		Delay:        0,
	})

	approved := 0
	const n = 1000
	for i := 0; i < n; i++ {
		outcome, err := reviewer.Review(context.Background(), uint(i))
		require.NoError(t, err)
		if outcome.Approved {
			approved++
		}
	}

	// Seeded rand, so the band is stable run to run.
	assert.InDelta(t, 0.8, float64(approved)/n, 0.05)
}

func TestSimulatedReviewerHonorsCancellation(t *testing.T) {
	fake := clock.NewFake(time.Now())
	reviewer := NewSimulatedReviewer(fake, rand.New(rand.NewSource(1)), config.ReviewPolicy{
		ApprovalRate: 0.8,
		Delay:        time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reviewer.Review(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
