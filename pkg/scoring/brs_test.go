package scoring

import (
	"math"
	"testing"

	"github.com/battleready/core/pkg/domain"
)

func TestCalculateBRSEmptySuite(t *testing.T) {
	result := CalculateBRS(domain.RunMetrics{})

	if result.Score != 100.0 {
		t.Errorf("Score = %v, want 100.0", result.Score)
	}
	if result.Grade != "A+" {
		t.Errorf("Grade = %q, want A+", result.Grade)
	}
}

func TestCalculateBRSPerfectSuite(t *testing.T) {
	result := CalculateBRS(domain.RunMetrics{
		TotalFiles:        2,
		TotalTests:        4,
		BISScores:         []float64{100, 100, 100, 100},
		AAACompliantTests: 4,
	})

	if result.Score != 100.0 {
		t.Errorf("Score = %v, want 100.0", result.Score)
	}
}

func TestCalculateBRSBreakdown(t *testing.T) {
	result := CalculateBRS(domain.RunMetrics{
		TotalFiles:        2,
		TotalTests:        2,
		TotalViolations:   2,
		BISScores:         []float64{99, 99},
		AAACompliantTests: 0,
		FilesWithIssues:   2,
		DuplicateTests:    2,
	})

	b := result.Breakdown
	if math.Abs(b.AverageBIS-99.0) > 1e-9 {
		t.Errorf("AverageBIS = %v, want 99.0", b.AverageBIS)
	}
	if b.AAAComplianceRate != 0.0 {
		t.Errorf("AAAComplianceRate = %v, want 0.0", b.AAAComplianceRate)
	}
	if math.Abs(b.BISDeduction-0.4) > 1e-9 {
		t.Errorf("BISDeduction = %v, want 0.4", b.BISDeduction)
	}
	if b.AAADeduction != 25.0 {
		t.Errorf("AAADeduction = %v, want 25.0", b.AAADeduction)
	}
	if b.ViolationPenalty != 10.0 {
		t.Errorf("ViolationPenalty = %v, want 10.0", b.ViolationPenalty)
	}
	if b.StylePenalty != 10.0 {
		t.Errorf("StylePenalty = %v, want 10.0", b.StylePenalty)
	}
	if b.DuplicatePenalty != 1.0 {
		t.Errorf("DuplicatePenalty = %v, want 1.0", b.DuplicatePenalty)
	}

	if math.Abs(result.Score-53.6) > 1e-9 {
		t.Errorf("Score = %v, want 53.6", result.Score)
	}
	if result.Grade != "C-" {
		t.Errorf("Grade = %q, want C-", result.Grade)
	}
}

func TestCalculateBRSPenaltyCaps(t *testing.T) {
	result := CalculateBRS(domain.RunMetrics{
		TotalFiles:        1,
		TotalTests:        1,
		TotalViolations:   10,
		BISScores:         []float64{100},
		AAACompliantTests: 1,
		DuplicateTests:    20,
	})

	if result.Breakdown.ViolationPenalty != 20.0 {
		t.Errorf("ViolationPenalty = %v, want cap 20.0", result.Breakdown.ViolationPenalty)
	}
	if result.Breakdown.DuplicatePenalty != 5.0 {
		t.Errorf("DuplicatePenalty = %v, want cap 5.0", result.Breakdown.DuplicatePenalty)
	}
}

func TestCalculateBRSMonotonicInViolations(t *testing.T) {
	base := domain.RunMetrics{
		TotalFiles:        1,
		TotalTests:        5,
		BISScores:         []float64{90, 90, 90, 90, 90},
		AAACompliantTests: 3,
	}

	prev := math.Inf(1)
	for violations := 0; violations <= 12; violations++ {
		metrics := base
		metrics.TotalViolations = violations

		score := CalculateBRS(metrics).Score
		if score > prev {
			t.Fatalf("score increased from %v to %v at %d violations", prev, score, violations)
		}
		prev = score
	}
}
