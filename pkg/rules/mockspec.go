package rules

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/battleready/core/pkg/analyzer/pyast"
	"github.com/battleready/core/pkg/domain"
)

// DefaultMockAssertionThreshold is the mock-assertion count above which a
// test is considered over-specified.
const DefaultMockAssertionThreshold = 3

const mockOverspecConfidence = 0.8

// MockAssertionMethods are the mock interaction assertions counted per test.
var MockAssertionMethods = []string{
	"assert_called",
	"assert_called_once",
	"assert_called_with",
	"assert_called_once_with",
	"assert_any_call",
	"assert_has_calls",
}

var mockAssertionSet = func() map[string]bool {
	set := make(map[string]bool, len(MockAssertionMethods))
	for _, m := range MockAssertionMethods {
		set[m] = true
	}
	return set
}()

// MockOverspecDetector counts mock interaction assertions per test and flags
// tests exceeding the threshold. Receivers matching an allow-list of
// glob-like patterns (e.g. "requests.*") are not counted.
type MockOverspecDetector struct {
	threshold     int
	allowPatterns []string
}

// NewMockOverspecDetector returns a mock-overspecification detector.
// A non-positive threshold selects DefaultMockAssertionThreshold.
func NewMockOverspecDetector(threshold int, allowPatterns []string) *MockOverspecDetector {
	if threshold <= 0 {
		threshold = DefaultMockAssertionThreshold
	}
	return &MockOverspecDetector{
		threshold:     threshold,
		allowPatterns: allowPatterns,
	}
}

// Name implements Detector.
func (d *MockOverspecDetector) Name() string { return "mock-overspecification" }

// Analyze implements Detector. Emits at most one finding per test, reporting
// the surviving count and the threshold.
func (d *MockOverspecDetector) Analyze(root *sitter.Node, source []byte, path string) ([]domain.Finding, error) {
	var findings []domain.Finding

	for _, test := range pyast.CollectTestFunctions(root, source) {
		count := CountMockAssertions(test, source, d.allowPatterns)
		if count <= d.threshold {
			continue
		}

		findings = append(findings, domain.Finding{
			Code:       CodeMockOverspecification,
			Name:       "mock-overspecification",
			Severity:   domain.SeverityWarning,
			Message:    fmt.Sprintf("test %q makes %d mock assertions (threshold: %d)", test.Name, count, d.threshold),
			File:       path,
			Line:       pyast.Line(test.Node),
			Confidence: mockOverspecConfidence,
			Suggestion: "Assert on observable outcomes instead of interaction details",
			Detail:     domain.MockOveruse{Count: count, Threshold: d.threshold},
		})
	}

	return findings, nil
}

// CountMockAssertions counts the mock-assertion method calls in a test body,
// excluding calls whose receiver matches the allow-list.
func CountMockAssertions(test pyast.TestFunc, source []byte, allowPatterns []string) int {
	count := 0
	for _, call := range pyast.CallNodes(test) {
		attr := pyast.CalleeAttribute(call)
		if attr == nil {
			continue
		}
		if !mockAssertionSet[pyast.Text(attr.ChildByFieldName("attribute"), source)] {
			continue
		}
		if receiverAllowed(pyast.Receiver(attr, source), allowPatterns) {
			continue
		}
		count++
	}
	return count
}

// receiverAllowed matches a dotted receiver path against glob-like patterns;
// dots act as path separators, so "requests.*" covers "requests.get" but not
// "requests.adapters.send".
func receiverAllowed(receiver string, patterns []string) bool {
	if receiver == "" || len(patterns) == 0 {
		return false
	}
	path := strings.ReplaceAll(receiver, ".", "/")
	for _, pattern := range patterns {
		matched, err := doublestar.Match(strings.ReplaceAll(pattern, ".", "/"), path)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
