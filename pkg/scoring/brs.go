package scoring

import (
	"math"

	"github.com/battleready/core/pkg/domain"
)

// BRS component weights and penalty caps.
const (
	brsBISWeight = 40.0
	brsAAAWeight = 25.0

	brsViolationPenaltyCap = 20.0
	brsViolationPerTest    = 10.0

	brsStyleWeight = 10.0

	brsDuplicatePenaltyCap = 5.0
	brsDuplicatePerCluster = 0.5
)

// BRSBreakdown details how the suite score was computed.
type BRSBreakdown struct {
	// AverageBIS is the mean per-test BIS score.
	AverageBIS float64 `json:"averageBIS"`
	// AAAComplianceRate is compliant tests over total tests.
	AAAComplianceRate float64 `json:"aaaComplianceRate"`
	// BISDeduction is the slice of the baseline lost to low BIS scores.
	BISDeduction float64 `json:"bisDeduction"`
	// AAADeduction is the slice lost to non-compliant tests.
	AAADeduction float64 `json:"aaaDeduction"`
	// ViolationPenalty is the capped violation-density penalty.
	ViolationPenalty float64 `json:"violationPenalty"`
	// StylePenalty is the files-with-issues penalty.
	StylePenalty float64 `json:"stylePenalty"`
	// DuplicatePenalty is the capped duplicate-test penalty.
	DuplicatePenalty float64 `json:"duplicatePenalty"`
}

// BRSResult is the suite's Battlefield Readiness Score.
type BRSResult struct {
	// Score is the 0-100 suite score, rounded to one decimal.
	Score float64 `json:"score"`
	// Grade is the letter grade for the score.
	Grade string `json:"grade"`
	// Breakdown details the components.
	Breakdown BRSBreakdown `json:"breakdown"`
}

// CalculateBRS computes the suite score from run-wide metrics. The score
// starts at 100; the BIS and AAA components each replace a fixed slice of
// that baseline linearly, and the density, style, and duplicate penalties
// subtract on top. An empty suite scores 100.
func CalculateBRS(metrics domain.RunMetrics) BRSResult {
	if metrics.TotalTests == 0 {
		return BRSResult{Score: 100.0, Grade: BRSGrade(100.0)}
	}

	breakdown := BRSBreakdown{
		AverageBIS:        metrics.AverageBIS(),
		AAAComplianceRate: float64(metrics.AAACompliantTests) / float64(metrics.TotalTests),
	}

	breakdown.BISDeduction = brsBISWeight * (1 - breakdown.AverageBIS/100)
	breakdown.AAADeduction = brsAAAWeight * (1 - breakdown.AAAComplianceRate)

	violationDensity := float64(metrics.TotalViolations) / float64(metrics.TotalTests)
	breakdown.ViolationPenalty = math.Min(brsViolationPenaltyCap, brsViolationPerTest*violationDensity)

	if metrics.TotalFiles > 0 {
		breakdown.StylePenalty = brsStyleWeight * float64(metrics.FilesWithIssues) / float64(metrics.TotalFiles)
	}

	breakdown.DuplicatePenalty = math.Min(brsDuplicatePenaltyCap, brsDuplicatePerCluster*float64(metrics.DuplicateTests))

	score := 100 - breakdown.BISDeduction - breakdown.AAADeduction -
		breakdown.ViolationPenalty - breakdown.StylePenalty - breakdown.DuplicatePenalty
	score = round1(clamp(score, 0, 100))

	return BRSResult{
		Score:     score,
		Grade:     BRSGrade(score),
		Breakdown: breakdown,
	}
}
