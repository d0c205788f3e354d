package coverage

import (
	"math"
	"strings"
	"testing"

	"github.com/battleready/core/pkg/domain"
)

func sampleRecord() domain.CoverageRecord {
	return domain.CoverageRecord{
		LinesCovered:    3,
		LinesTotal:      4,
		BranchesCovered: 1,
		BranchesTotal:   2,
		CoveragePercent: 75.0,
		CoveredLines:    []int{10, 11, 12},
		MissingLines:    []int{13},
	}
}

func TestGenerateDeterministic(t *testing.T) {
	record := sampleRecord()

	shuffled := record
	shuffled.CoveredLines = []int{12, 10, 11}

	a := Generate("test_login", "tests/test_auth.py", record)
	b := Generate("test_login", "tests/test_auth.py", shuffled)

	if a.Hash == "" {
		t.Fatal("expected a non-empty hash")
	}
	if a.Hash != b.Hash {
		t.Errorf("hashes differ for identical records: %q vs %q", a.Hash, b.Hash)
	}
	if got := Similarity(a, b); got != 1.0 {
		t.Errorf("Similarity of identical records = %v, want 1.0", got)
	}
}

func TestGenerateDistinguishesRecords(t *testing.T) {
	a := Generate("test_a", "f.py", sampleRecord())

	other := sampleRecord()
	other.CoveredLines = []int{10, 11, 14}
	b := Generate("test_b", "f.py", other)

	if a.Hash == b.Hash {
		t.Error("different covered-line sets should produce different hashes")
	}
}

func TestGenerateVector(t *testing.T) {
	sig := Generate("test_login", "f.py", sampleRecord())

	want := []float64{0.75, 0.75, 0.5, 0.5}
	if len(sig.Vector) != len(want) {
		t.Fatalf("vector length = %d, want %d", len(sig.Vector), len(want))
	}
	for i := range want {
		if math.Abs(sig.Vector[i]-want[i]) > 1e-9 {
			t.Errorf("Vector[%d] = %v, want %v", i, sig.Vector[i], want[i])
		}
	}
}

func TestLineDensity(t *testing.T) {
	tests := []struct {
		name  string
		lines []int
		want  float64
	}{
		{"no lines", nil, 0.0},
		{"single line", []int{7}, 1.0},
		{"contiguous lines", []int{5, 6, 7}, 0.5},
		{"sparse lines", []int{1, 11}, 1.0 / 11.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lineDensity(tt.lines); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("lineDensity(%v) = %v, want %v", tt.lines, got, tt.want)
			}
		})
	}
}

func TestGeneratePattern(t *testing.T) {
	sig := Generate("test_login", "f.py", sampleRecord())

	wantPrefix := "coverage:75.0%|lines:3/4|branches:1/2|signature:" + sig.Hash[:8]
	if sig.Pattern != wantPrefix {
		t.Errorf("Pattern = %q, want %q", sig.Pattern, wantPrefix)
	}
	if !strings.Contains(sig.Pattern, "signature:") {
		t.Error("pattern should embed the hash prefix")
	}
}

func TestSimilarity(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		a := Generate("test_a", "f.py", sampleRecord())

		other := sampleRecord()
		other.CoveredLines = []int{10, 20, 30}
		other.CoveragePercent = 50.0
		b := Generate("test_b", "f.py", other)

		ab := Similarity(a, b)
		ba := Similarity(b, a)
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("similarity is not symmetric: %v vs %v", ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("similarity %v outside [0,1]", ab)
		}
	})

	t.Run("parallel vectors score one", func(t *testing.T) {
		a := domain.CoverageSignature{Hash: "a", Vector: []float64{0.5, 0.5, 0.5, 0.5}}
		b := domain.CoverageSignature{Hash: "b", Vector: []float64{1, 1, 1, 1}}

		if got := Similarity(a, b); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("Similarity = %v, want 1.0", got)
		}
	})

	t.Run("pattern fallback without vectors", func(t *testing.T) {
		a := domain.CoverageSignature{Hash: "a", Pattern: "coverage:50.0%|lines:1/2|branches:0/0"}
		b := domain.CoverageSignature{Hash: "b", Pattern: "coverage:50.0%|lines:1/2|branches:1/2"}

		if got := Similarity(a, b); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("Similarity = %v, want 0.5", got)
		}
	})

	t.Run("zero vector scores zero", func(t *testing.T) {
		a := domain.CoverageSignature{Hash: "a", Vector: []float64{0, 0, 0, 0}}
		b := domain.CoverageSignature{Hash: "b", Vector: []float64{1, 1, 1, 1}}

		if got := Similarity(a, b); got != 0 {
			t.Errorf("Similarity = %v, want 0", got)
		}
	})
}
