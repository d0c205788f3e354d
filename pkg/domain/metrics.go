package domain

// Location is a position range within a file. Line numbers are 1-based.
type Location struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	StartCol  int    `json:"startCol"`
	EndCol    int    `json:"endCol"`
}

// TestFeatures is the per-test feature set extracted during analysis. It
// feeds both the BIS calculator and the duplicate detector.
type TestFeatures struct {
	// Name is the test function name.
	Name string `json:"name"`
	// File is the test's file path.
	File string `json:"file"`
	// StartLine and EndLine bound the test function body (1-based, inclusive).
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
	// ParamCount is the number of parameters, excluding self.
	ParamCount int `json:"paramCount"`
	// DecoratorCount is the number of decorators on the test.
	DecoratorCount int `json:"decoratorCount"`
	// StatementCount is the number of top-level statements in the body.
	StatementCount int `json:"statementCount"`
	// AssertionCount counts assert statements and assert* calls.
	AssertionCount int `json:"assertionCount"`
	// MockAssertionCount counts mock interaction assertions.
	MockAssertionCount int `json:"mockAssertionCount"`
	// HasAAAComments reports whether any AAA section marker was found.
	HasAAAComments bool `json:"hasAAAComments"`
	// AAACompliant reports complete, correctly ordered AAA structure.
	AAACompliant bool `json:"aaaCompliant"`
	// ExceptionPattern is the pipe-joined exception-handling token string.
	ExceptionPattern string `json:"exceptionPattern,omitempty"`
}

// Key returns the test's suite-wide identity.
func (f TestFeatures) Key() TestKey {
	return TestKey{File: f.File, Name: f.Name}
}

// RunMetrics accumulates suite-wide counters across analyzed files. It is
// mutated incrementally during a run and finalized once at the end.
type RunMetrics struct {
	// TotalFiles is the number of analyzed files.
	TotalFiles int `json:"totalFiles"`
	// TotalTests is the number of analyzed tests.
	TotalTests int `json:"totalTests"`
	// TotalViolations is the number of findings across the run.
	TotalViolations int `json:"totalViolations"`
	// BISScores lists every per-test BIS score.
	BISScores []float64 `json:"bisScores,omitempty"`
	// AAACompliantTests counts tests with complete, ordered AAA structure.
	AAACompliantTests int `json:"aaaCompliantTests"`
	// FilesWithIssues counts files with at least one finding.
	FilesWithIssues int `json:"filesWithIssues"`
	// DuplicateTests counts tests that belong to a duplicate cluster.
	DuplicateTests int `json:"duplicateTests"`
}

// AverageBIS returns the mean BIS score, or 0 when no scores were recorded.
func (m RunMetrics) AverageBIS() float64 {
	if len(m.BISScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range m.BISScores {
		sum += s
	}
	return sum / float64(len(m.BISScores))
}
