package admission

import (
	"context"
	"math/rand"

	"trustlist_backend/config"
	"trustlist_backend/internal/clock"
)

// ReviewOutcome is the resolution of a manual review.
type ReviewOutcome struct {
	Approved bool
	Reasons  []string
}

// Reviewer resolves a pending high-value submission. The production
// implementation is a simulation; a real reviewer queue would satisfy the
// same interface.
type Reviewer interface {
	Review(ctx context.Context, productID uint) (ReviewOutcome, error)
}

// SimulatedReviewer approves a configured fraction of submissions after a
// delay. The delay runs on the injected clock and honors context
// cancellation: a caller that navigates away abandons the review without
// corrupting anything already persisted.
type SimulatedReviewer struct {
	Clock  clock.Clock
	Rand   *rand.Rand
	Policy config.ReviewPolicy
}

func NewSimulatedReviewer(clk clock.Clock, rng *rand.Rand, policy config.ReviewPolicy) *SimulatedReviewer {
	return &SimulatedReviewer{Clock: clk, Rand: rng, Policy: policy}
}

func (r *SimulatedReviewer) Review(ctx context.Context, productID uint) (ReviewOutcome, error) {
	select {
	case <-r.Clock.After(r.Policy.Delay):
	case <-ctx.Done():
		return ReviewOutcome{}, ctx.Err()
	}

	if r.Rand.Float64() < r.Policy.ApprovalRate {
		return ReviewOutcome{Approved: true}, nil
	}
	return ReviewOutcome{Approved: false, Reasons: RejectionReasons}, nil
}
