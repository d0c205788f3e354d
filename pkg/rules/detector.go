// Package rules implements the syntax-tree rule detectors that turn a parsed
// test file into findings.
package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/battleready/core/pkg/domain"
)

// Detector analyzes one parsed test file and reports findings. Implementations
// are stateless per call and must not retain references to the tree or the
// returned findings. A non-nil error means the detector could not run; the
// aggregator treats that as "no findings from this detector" (fail-open).
type Detector interface {
	// Name identifies the detector for logging.
	Name() string
	// Analyze inspects the file's tree and returns zero or more findings.
	Analyze(root *sitter.Node, source []byte, path string) ([]domain.Finding, error)
}

// Rule codes emitted by the built-in detectors.
const (
	CodePrivateImport    domain.RuleCode = "PA001"
	CodePrivateAttribute domain.RuleCode = "PA002"
	CodePrivateCall      domain.RuleCode = "PA003"

	CodeMissingAAA       domain.RuleCode = "AA001"
	CodeDuplicateAAA     domain.RuleCode = "AA002"
	CodeAAAOrder         domain.RuleCode = "AA003"
	CodeIncompleteAAA    domain.RuleCode = "AA004"

	CodeDictComparison   domain.RuleCode = "SE001"
	CodeVarsComparison   domain.RuleCode = "SE002"
	CodeAsdictComparison domain.RuleCode = "SE003"
	CodeReprComparison   domain.RuleCode = "SE004"
	CodeStrComparison    domain.RuleCode = "SE005"
	CodePrivateGetattr   domain.RuleCode = "SE006"

	CodeMockOverspecification domain.RuleCode = "MK001"

	CodeParseFailure domain.RuleCode = "PE001"
)

// DefaultDetectors returns the built-in detector set with default configuration.
func DefaultDetectors() []Detector {
	return []Detector{
		NewPrivateAccessDetector(),
		NewAAADetector(),
		NewStructuralEqualityDetector(),
		NewMockOverspecDetector(0, nil),
	}
}

// NewParseFailureFinding converts an upstream parse failure into the single
// error-severity finding reported for an unparseable file.
func NewParseFailureFinding(path string, parseErr error) domain.Finding {
	return domain.Finding{
		Code:       CodeParseFailure,
		Name:       "parse-failure",
		Severity:   domain.SeverityError,
		Message:    "file could not be parsed: " + parseErr.Error(),
		File:       path,
		Line:       1,
		Confidence: 1.0,
		Detail:     domain.ParseFailureDetail{Reason: parseErr.Error()},
	}
}
