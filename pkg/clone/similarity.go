// Package clone detects duplicate and near-duplicate tests by combining
// structural, coverage, mock, and exception-handling similarity signals.
package clone

import (
	"fmt"
	"strings"

	"github.com/battleready/core/pkg/coverage"
	"github.com/battleready/core/pkg/domain"
)

// TestRecord is one test's similarity inputs: its extracted features plus
// optional coverage data.
type TestRecord struct {
	// Key identifies the test.
	Key domain.TestKey
	// Features is the test's extracted feature set.
	Features domain.TestFeatures
	// Coverage is the test's coverage record, when available.
	Coverage *domain.CoverageRecord
	// Signature is the test's coverage signature, when available.
	Signature *domain.CoverageSignature
}

// Weights are the component weights of the overall similarity. Structural
// and coverage carry the largest share.
type Weights struct {
	Structural float64
	Coverage   float64
	Mock       float64
	Exception  float64
}

// DefaultWeights returns the standard component weights.
func DefaultWeights() Weights {
	return Weights{
		Structural: 0.40,
		Coverage:   0.30,
		Mock:       0.15,
		Exception:  0.15,
	}
}

func (w Weights) total() float64 {
	return w.Structural + w.Coverage + w.Mock + w.Exception
}

// StructuralSignature summarizes a test's syntactic shape as pipe-joined
// key:value tokens.
func StructuralSignature(f domain.TestFeatures) string {
	return fmt.Sprintf("name:%s|params:%d|decorators:%d|statements:%d|mock_asserts:%d",
		f.Name, f.ParamCount, f.DecoratorCount, f.StatementCount, f.MockAssertionCount)
}

// Compare computes the weighted pairwise similarity of two tests. Malformed
// or missing inputs degrade individual components to 0 rather than failing.
func Compare(a, b TestRecord, weights Weights) domain.TestSimilarity {
	sim := domain.TestSimilarity{
		Test1:           a.Key,
		Test2:           b.Key,
		Structural:      tokenJaccard(StructuralSignature(a.Features), StructuralSignature(b.Features)),
		CoverageOverlap: coverageSimilarity(a, b),
		Mock:            mockSimilarity(a.Features.MockAssertionCount, b.Features.MockAssertionCount),
		Exception:       tokenJaccard(a.Features.ExceptionPattern, b.Features.ExceptionPattern),
	}

	total := weights.total()
	if total <= 0 {
		return sim
	}

	sim.Overall = (weights.Structural*sim.Structural +
		weights.Coverage*sim.CoverageOverlap +
		weights.Mock*sim.Mock +
		weights.Exception*sim.Exception) / total

	return sim
}

// coverageSimilarity prefers Jaccard over the covered-line sets; when records
// are unavailable it falls back to signature similarity, then to 0.
func coverageSimilarity(a, b TestRecord) float64 {
	if a.Coverage != nil && b.Coverage != nil {
		return lineSetJaccard(a.Coverage.CoveredLines, b.Coverage.CoveredLines)
	}
	if a.Signature != nil && b.Signature != nil {
		return coverage.Similarity(*a.Signature, *b.Signature)
	}
	return 0
}

// mockSimilarity is min/max of the two counts; two tests with no mock
// assertions are maximally similar on this signal.
func mockSimilarity(a, b int) float64 {
	if a == 0 && b == 0 {
		return 1.0
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi == 0 {
		return 0
	}
	return float64(lo) / float64(hi)
}

// tokenJaccard computes Jaccard similarity over pipe-separated tokens.
// Two empty token strings are identical, scoring 1.0.
func tokenJaccard(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}

	setA := tokenSet(a)
	setB := tokenSet(b)

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Split(s, "|") {
		if token != "" {
			set[token] = true
		}
	}
	return set
}

// lineSetJaccard computes Jaccard similarity over two covered-line sets.
// Two empty sets are identical, scoring 1.0.
func lineSetJaccard(a, b []int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[int]bool, len(a))
	for _, line := range a {
		setA[line] = true
	}

	intersection := 0
	setB := make(map[int]bool, len(b))
	for _, line := range b {
		if setB[line] {
			continue
		}
		setB[line] = true
		if setA[line] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
