package admission

import (
	"strings"
	"testing"

	"trustlist_backend/config"

	"github.com/stretchr/testify/assert"
)

func testPipeline() *Pipeline {
	return NewPipeline(config.DefaultPolicy().Admission)
}

func cleanSubmission() Submission {
	return Submission{
		SellerID:    1,
		Title:       "iPhone 13 Pro 256GB",
		Description: strings.Repeat("Well maintained phone with original box, charger and bill. ", 3),
		Category:    "ELECTRONICS",
		Condition:   "EXCELLENT",
		Price:       5000,
		Images:      []string{"a.jpg", "b.jpg", "c.jpg"},
	}
}

func TestEvaluateCleanSubmissionAutoPublishes(t *testing.T) {
	p := testPipeline()
	sub := cleanSubmission()

	result := p.Evaluate(sub)

	assert.False(t, result.Flagged)
	assert.False(t, result.RequiresManualReview)
	assert.Equal(t, StatusExcellent, result.Checks.Authenticity.Status)
	assert.Equal(t, AutoPublish, p.Decide(sub, result))
	assert.True(t, p.AutoVerified(sub))
}

func TestEvaluateCounterfeitVocabularyRejects(t *testing.T) {
	p := testPipeline()

	for _, term := range []string{"replica", "first copy", "AAA quality"} {
		sub := cleanSubmission()
		sub.Title = "Branded watch " + term

		result := p.Evaluate(sub)

		assert.True(t, result.Flagged, "term %q should flag the submission", term)
		assert.Equal(t, StatusPoor, result.Checks.Authenticity.Status)
		assert.Equal(t, 60, result.Checks.Authenticity.Score)
		assert.Equal(t, Rejected, p.Decide(sub, result))
	}
}

func TestEvaluateNoImagesFlagsAuthenticity(t *testing.T) {
	p := testPipeline()
	sub := cleanSubmission()
	sub.Images = nil

	result := p.Evaluate(sub)

	assert.True(t, result.Flagged)
	assert.Equal(t, Rejected, p.Decide(sub, result))
}

func TestEvaluateShortDescriptionFlagsAuthenticity(t *testing.T) {
	p := testPipeline()
	sub := cleanSubmission()
	sub.Description = "good phone"

	result := p.Evaluate(sub)

	assert.True(t, result.Flagged)
}

func TestHighValueGoesToManualReview(t *testing.T) {
	p := testPipeline()
	sub := cleanSubmission()
	sub.Price = 85000

	result := p.Evaluate(sub)

	assert.False(t, result.Flagged)
	assert.True(t, result.RequiresManualReview)
	assert.Equal(t, PendingReview, p.Decide(sub, result))
	assert.False(t, p.AutoVerified(sub))
}

func TestFlagWinsOverHighValue(t *testing.T) {
	// A flagged high-value listing is rejected outright, never queued.
	p := testPipeline()
	sub := cleanSubmission()
	sub.Price = 85000
	sub.Title = "First copy luxury watch"

	result := p.Evaluate(sub)

	assert.True(t, result.Flagged)
	assert.False(t, result.RequiresManualReview)
	assert.Equal(t, Rejected, p.Decide(sub, result))
}

func TestOverallScoreIsAverageOfChecks(t *testing.T) {
	p := testPipeline()
	result := p.Evaluate(cleanSubmission())

	checks := []Check{
		result.Checks.ImageQuality,
		result.Checks.ProductCondition,
		result.Checks.PriceAccuracy,
		result.Checks.DescriptionQuality,
		result.Checks.Authenticity,
	}
	var sum int
	for _, c := range checks {
		sum += c.Score
	}
	assert.Equal(t, sum/len(checks), result.OverallScore)
}

func TestSuggestedRange(t *testing.T) {
	p := testPipeline()

	// Known original price: 55% to 95% of it
	min, max := p.SuggestedRange(Submission{Price: 8000, OriginalPrice: 10000})
	assert.Equal(t, 5500.0, min)
	assert.Equal(t, 9500.0, max)

	// No original price: band around asking
	min, max = p.SuggestedRange(Submission{Price: 1000})
	assert.Equal(t, 800.0, min)
	assert.Equal(t, 1200.0, max)
}

func TestRecommendationsTrackWeakChecks(t *testing.T) {
	p := testPipeline()
	sub := cleanSubmission()
	sub.Images = []string{"a.jpg"}
	sub.Description = strings.Repeat("ok ", 15) // long enough to avoid the flag, short of the quality bar

	result := p.Evaluate(sub)

	assert.Contains(t, result.Recommendations, "Add more high-quality images from different angles")
	assert.Contains(t, result.Recommendations, "Provide more detailed product description")
}
