package domain

// TestKey identifies a test within a suite.
type TestKey struct {
	// File is the test's file path.
	File string `json:"file"`
	// Name is the test function name.
	Name string `json:"name"`
}

// String returns the canonical "file:name" form.
func (k TestKey) String() string {
	return k.File + ":" + k.Name
}

// Less orders keys by file then name, for stable iteration.
func (k TestKey) Less(other TestKey) bool {
	if k.File != other.File {
		return k.File < other.File
	}
	return k.Name < other.Name
}

// TestSimilarity is the pairwise similarity between two tests. Overall is a
// weighted combination of the four component scores, each in [0,1].
type TestSimilarity struct {
	Test1 TestKey `json:"test1"`
	Test2 TestKey `json:"test2"`
	// Structural compares the tests' structural signatures.
	Structural float64 `json:"structural"`
	// CoverageOverlap compares covered-line sets.
	CoverageOverlap float64 `json:"coverageOverlap"`
	// Mock compares mock-assertion counts.
	Mock float64 `json:"mock"`
	// Exception compares exception-handling patterns.
	Exception float64 `json:"exception"`
	// Overall is the weighted combination of the components.
	Overall float64 `json:"overall"`
	// Type is the cluster tier this similarity clears, if any.
	Type ClusterType `json:"type,omitempty"`
}

// ClusterType is the tier of a duplicate cluster.
type ClusterType string

// Cluster tiers, from most to least similar.
const (
	ClusterExactDuplicates ClusterType = "exact_duplicates"
	ClusterNearDuplicates  ClusterType = "near_duplicates"
	ClusterSimilarPatterns ClusterType = "similar_patterns"
)

// DuplicateCluster is a group of at least two tests judged similar enough to
// be consolidation candidates.
type DuplicateCluster struct {
	// ID uniquely identifies the cluster within a run.
	ID string `json:"id"`
	// Tests lists the member tests in stable order.
	Tests []TestKey `json:"tests"`
	// Similarity is the mean pairwise similarity among members.
	Similarity float64 `json:"similarity"`
	// Type is the threshold tier the cluster cleared.
	Type ClusterType `json:"type"`
	// Representative is the first member in stable iteration order.
	Representative TestKey `json:"representative"`
	// Suggestion recommends how to consolidate, for exact and near duplicates.
	Suggestion string `json:"suggestion,omitempty"`
}
