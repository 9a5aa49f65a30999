package admission

import (
	"strings"

	"trustlist_backend/config"
)

// Disposition is the admission outcome for a listing submission.
type Disposition string

const (
	AutoPublish   Disposition = "AUTO_PUBLISH"
	PendingReview Disposition = "PENDING_REVIEW"
	Rejected      Disposition = "REJECTED"
)

// Submission states. PendingReview is the only state with a timed
// transition; everything else resolves synchronously.
const (
	StateDraft         = "DRAFT"
	StateEvaluating    = "EVALUATING"
	StateAutoPublished = "AUTO_PUBLISHED"
	StatePendingReview = "PENDING_REVIEW"
	StatePublished     = "PUBLISHED"
	StateRejected      = "REJECTED"
)

// CheckStatus grades a single health check.
type CheckStatus string

const (
	StatusExcellent CheckStatus = "excellent"
	StatusGood      CheckStatus = "good"
	StatusPoor      CheckStatus = "poor"
)

// Submission is a candidate listing entering the pipeline.
type Submission struct {
	SellerID      uint
	Title         string
	Description   string
	Category      string
	Condition     string
	Location      string
	Price         float64
	OriginalPrice float64
	Images        []string
}

// Check is one graded health check.
type Check struct {
	Score   int         `json:"score"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
}

// Checks groups the five health checks run over every submission.
type Checks struct {
	ImageQuality       Check `json:"image_quality"`
	ProductCondition   Check `json:"product_condition"`
	PriceAccuracy      Check `json:"price_accuracy"`
	DescriptionQuality Check `json:"description_quality"`
	Authenticity       Check `json:"authenticity"`
}

// Result is the outcome of evaluating a submission. Ephemeral: computed per
// attempt, not persisted beyond the pending submission.
type Result struct {
	OverallScore         int      `json:"overall_score"`
	Checks               Checks   `json:"checks"`
	Recommendations      []string `json:"recommendations"`
	Flagged              bool     `json:"flagged"`
	RequiresManualReview bool     `json:"requires_manual_review"`
}

// Fixed reason codes surfaced with every manual-review rejection.
var RejectionReasons = []string{
	"Price appears significantly below market value",
	"Product authenticity concerns",
	"Insufficient product documentation",
}

// Terms whose presence in a title or description marks the authenticity
// check as poor.
var counterfeitTerms = []string{
	"replica",
	"first copy",
	"master copy",
	"copy of",
	"clone",
	"aaa quality",
	"fake",
}

// Pipeline scores candidate listings and routes them to a disposition.
type Pipeline struct {
	policy config.AdmissionPolicy
}

func NewPipeline(policy config.AdmissionPolicy) *Pipeline {
	return &Pipeline{policy: policy}
}

// Evaluate runs the five health checks. Each check is monotonic in its
// input: more images, better condition, in-range price and longer
// descriptions never lower a score.
func (p *Pipeline) Evaluate(sub Submission) Result {
	result := Result{
		Checks: Checks{
			ImageQuality:       p.checkImages(sub),
			ProductCondition:   p.checkCondition(sub),
			PriceAccuracy:      p.checkPrice(sub),
			DescriptionQuality: p.checkDescription(sub),
			Authenticity:       p.checkAuthenticity(sub),
		},
	}

	checks := []Check{
		result.Checks.ImageQuality,
		result.Checks.ProductCondition,
		result.Checks.PriceAccuracy,
		result.Checks.DescriptionQuality,
		result.Checks.Authenticity,
	}
	var sum int
	for _, check := range checks {
		sum += check.Score
	}
	result.OverallScore = sum / len(checks)

	// An authenticity failure flags the submission regardless of the
	// other scores.
	result.Flagged = result.Checks.Authenticity.Status == StatusPoor
	result.RequiresManualReview = sub.Price > p.policy.HighValuePrice && !result.Flagged

	result.Recommendations = p.recommendations(result)
	return result
}

// Decide routes an evaluated submission to its disposition.
func (p *Pipeline) Decide(sub Submission, result Result) Disposition {
	if result.Flagged {
		return Rejected
	}
	if sub.Price > p.policy.HighValuePrice {
		return PendingReview
	}
	return AutoPublish
}

// AutoVerified reports whether an auto-published listing gets the verified
// badge. Only listings at or under the high-value threshold qualify without
// manual review.
func (p *Pipeline) AutoVerified(sub Submission) bool {
	return sub.Price <= p.policy.HighValuePrice
}

func (p *Pipeline) checkImages(sub Submission) Check {
	if len(sub.Images) >= p.policy.MinImages {
		return Check{Score: 95, Status: StatusExcellent, Message: "Good image coverage from multiple angles"}
	}
	return Check{Score: 75, Status: StatusGood, Message: "Consider adding more images for better buyer confidence"}
}

func (p *Pipeline) checkCondition(sub Submission) Check {
	switch strings.ToUpper(sub.Condition) {
	case "LIKE NEW", "LIKE_NEW":
		return Check{Score: 95, Status: StatusExcellent, Message: "Condition matches the listed grade"}
	case "EXCELLENT":
		return Check{Score: 85, Status: StatusGood, Message: "Condition matches the listed grade"}
	default:
		return Check{Score: 75, Status: StatusGood, Message: "Condition grade accepted"}
	}
}

func (p *Pipeline) checkPrice(sub Submission) Check {
	min, max := p.SuggestedRange(sub)
	if sub.Price >= min && sub.Price <= max {
		return Check{Score: 90, Status: StatusExcellent, Message: "Price is within the suggested range for comparable items"}
	}
	return Check{Score: 70, Status: StatusGood, Message: "Price is outside the suggested range for comparable items"}
}

func (p *Pipeline) checkDescription(sub Submission) Check {
	if len(sub.Description) > p.policy.MinDescriptionChars {
		return Check{Score: 90, Status: StatusExcellent, Message: "Detailed product description"}
	}
	return Check{Score: 70, Status: StatusGood, Message: "Description is short; more detail builds trust"}
}

// checkAuthenticity is a deterministic heuristic: counterfeit vocabulary,
// a listing with no images, or a near-empty description all read as
// authenticity risks.
func (p *Pipeline) checkAuthenticity(sub Submission) Check {
	haystack := strings.ToLower(sub.Title + " " + sub.Description)
	suspicious := len(sub.Images) == 0 || len(strings.TrimSpace(sub.Description)) < 20
	for _, term := range counterfeitTerms {
		if strings.Contains(haystack, term) {
			suspicious = true
			break
		}
	}

	if suspicious {
		return Check{Score: 60, Status: StatusPoor, Message: "Some authenticity concerns detected - manual review required"}
	}
	return Check{Score: 95, Status: StatusExcellent, Message: "Product appears authentic based on images and description"}
}

// SuggestedRange computes the comparable-items price band. With a known
// original price the band is 55%-95% of it; otherwise ±20% around asking.
func (p *Pipeline) SuggestedRange(sub Submission) (min, max float64) {
	if sub.OriginalPrice > 0 {
		return sub.OriginalPrice * 0.55, sub.OriginalPrice * 0.95
	}
	return sub.Price * 0.8, sub.Price * 1.2
}

func (p *Pipeline) recommendations(result Result) []string {
	var recs []string
	if result.Checks.ImageQuality.Score < 85 {
		recs = append(recs, "Add more high-quality images from different angles")
	}
	if result.Checks.DescriptionQuality.Score < 85 {
		recs = append(recs, "Provide more detailed product description")
	}
	if result.Checks.PriceAccuracy.Score < 85 {
		recs = append(recs, "Consider adjusting price to market standards")
	}
	if result.Checks.Authenticity.Score < p.policy.AuthenticityPoorMax {
		recs = append(recs, "Provide proof of purchase or authenticity certificate")
	}
	return recs
}
