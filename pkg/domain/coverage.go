package domain

import "fmt"

// CoverageRecord is an externally measured per-test coverage result.
// This engine only consumes records; it never instruments execution.
type CoverageRecord struct {
	// LinesCovered is the number of covered lines.
	LinesCovered int `json:"linesCovered"`
	// LinesTotal is the number of measurable lines.
	LinesTotal int `json:"linesTotal"`
	// BranchesCovered is the number of covered branches.
	BranchesCovered int `json:"branchesCovered"`
	// BranchesTotal is the number of measurable branches.
	BranchesTotal int `json:"branchesTotal"`
	// CoveragePercent is the reported coverage percentage.
	CoveragePercent float64 `json:"coveragePercent"`
	// CoveredLines lists covered line numbers.
	CoveredLines []int `json:"coveredLines,omitempty"`
	// MissingLines lists uncovered line numbers.
	MissingLines []int `json:"missingLines,omitempty"`
}

// Validate checks the record's structural invariants.
func (r CoverageRecord) Validate() error {
	covered := make(map[int]bool, len(r.CoveredLines))
	for _, line := range r.CoveredLines {
		covered[line] = true
	}
	for _, line := range r.MissingLines {
		if covered[line] {
			return fmt.Errorf("coverage record: line %d is both covered and missing", line)
		}
	}
	return nil
}

// CoverageSignature is a deterministic fingerprint of a CoverageRecord,
// used only for similarity comparison. Identical records produce equal hashes.
type CoverageSignature struct {
	// TestName is the test this signature belongs to.
	TestName string `json:"testName"`
	// FilePath is the test's file.
	FilePath string `json:"filePath"`
	// Hash is the content hash of the record.
	Hash string `json:"hash"`
	// Vector is a fixed-length numeric feature vector.
	Vector []float64 `json:"vector"`
	// Pattern is a human-readable pipe-joined summary.
	Pattern string `json:"pattern"`
}
