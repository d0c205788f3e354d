package scoring

import (
	"math"

	"github.com/battleready/core/pkg/domain"
)

// Per-category caps on the weighted sum, applied before the base weight.
var categoryCaps = map[ImpactCategory]float64{
	ImpactHighPenalty:   5.0,
	ImpactMediumPenalty: 8.0,
	ImpactLowPenalty:    10.0,
	ImpactAdvisory:      15.0,
	ImpactReward:        3.0,
}

// Per-category base weights multiplied into the capped sums.
var categoryBaseWeights = map[ImpactCategory]float64{
	ImpactHighPenalty:   15.0,
	ImpactMediumPenalty: 8.0,
	ImpactLowPenalty:    4.0,
	ImpactAdvisory:      1.0,
	ImpactReward:        -5.0,
}

// aaaComplianceReward is the reward weight credited to a test whose features
// show complete, correctly ordered AAA structure.
const aaaComplianceReward = 1.0

// CategoryBreakdown is one impact category's accumulation for a test.
type CategoryBreakdown struct {
	// Count is the number of findings in this category.
	Count int `json:"count"`
	// WeightedSum is the sum of rule weights before capping.
	WeightedSum float64 `json:"weightedSum"`
	// Capped is the weighted sum after the per-category cap.
	Capped float64 `json:"capped"`
	// Contribution is the capped sum times the category base weight.
	// Negative for rewards.
	Contribution float64 `json:"contribution"`
}

// BISResult is a test's Behavior Integrity Score with its breakdown.
type BISResult struct {
	// Score is the 0-100 score, rounded to one decimal.
	Score float64 `json:"score"`
	// Grade is the letter grade for the score.
	Grade string `json:"grade"`
	// Categories breaks the score down per impact category.
	Categories map[ImpactCategory]CategoryBreakdown `json:"categories"`
	// TotalPenalty is the summed positive contributions.
	TotalPenalty float64 `json:"totalPenalty"`
	// Reward is the magnitude subtracted from the penalty.
	Reward float64 `json:"reward"`
}

// Calculator computes Behavior Integrity Scores against a rule registry.
type Calculator struct {
	registry *Registry
}

// NewCalculator returns a BIS calculator. A nil registry selects the default.
func NewCalculator(registry *Registry) *Calculator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Calculator{registry: registry}
}

// CalculateBIS scores one test from its findings and extracted features.
// A test with zero findings scores exactly 100.0 / A+.
func (c *Calculator) CalculateBIS(findings []domain.Finding, features domain.TestFeatures) BISResult {
	categories := make(map[ImpactCategory]CategoryBreakdown)

	for _, finding := range findings {
		impact, weight := c.registry.Resolve(finding.Code)
		breakdown := categories[impact]
		breakdown.Count++
		breakdown.WeightedSum += weight
		categories[impact] = breakdown
	}

	// A well-structured test earns a small reward.
	if features.AAACompliant {
		breakdown := categories[ImpactReward]
		breakdown.WeightedSum += aaaComplianceReward
		categories[ImpactReward] = breakdown
	}

	var totalPenalty, reward float64
	for impact, breakdown := range categories {
		breakdown.Capped = math.Min(breakdown.WeightedSum, categoryCaps[impact])
		breakdown.Contribution = breakdown.Capped * categoryBaseWeights[impact]
		categories[impact] = breakdown

		if impact == ImpactReward {
			reward = -breakdown.Contribution
		} else {
			totalPenalty += breakdown.Contribution
		}
	}

	score := round1(clamp(100-totalPenalty+reward, 0, 100))

	return BISResult{
		Score:        score,
		Grade:        BISGrade(score),
		Categories:   categories,
		TotalPenalty: totalPenalty,
		Reward:       reward,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
