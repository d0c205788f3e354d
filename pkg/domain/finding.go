// Package domain defines the core types for test quality analysis.
package domain

import (
	"encoding/json"
	"fmt"
)

// Severity classifies how serious a finding is.
type Severity string

// Finding severities, from most to least serious.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// RuleCode identifies a detection rule: a two-letter prefix followed by three digits.
type RuleCode string

// Valid reports whether the code matches the PREFIX + 3 digits shape (e.g. "PA001").
func (c RuleCode) Valid() bool {
	if len(c) != 5 {
		return false
	}
	for i := 0; i < 2; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	for i := 2; i < 5; i++ {
		if c[i] < '0' || c[i] > '9' {
			return false
		}
	}
	return true
}

// Finding is one reported rule violation. It is created by a single detector
// call and immutable afterwards; the run-level aggregator owns collected findings.
type Finding struct {
	// Code is the rule that produced this finding.
	Code RuleCode `json:"code"`
	// Name is the short human-readable rule name.
	Name string `json:"name"`
	// Severity classifies the finding.
	Severity Severity `json:"severity"`
	// Message describes the specific violation.
	Message string `json:"message"`
	// File is the analyzed file path.
	File string `json:"file"`
	// Line is the 1-based line number of the violation.
	Line int `json:"line"`
	// Column is the 0-based column, when known.
	Column int `json:"column,omitempty"`
	// Confidence is the detector's confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Suggestion proposes a fix, when one exists.
	Suggestion string `json:"suggestion,omitempty"`
	// Fixable indicates whether an automated fix is plausible.
	Fixable bool `json:"fixable"`
	// Tags are free-form labels from the rule registry.
	Tags []string `json:"tags,omitempty"`
	// Detail carries the violation-specific fields.
	Detail FindingDetail `json:"-"`
}

// FindingDetail is the violation-specific payload of a finding. Each rule
// family has its own concrete type so callers can switch exhaustively
// instead of digging through string-keyed maps.
type FindingDetail interface {
	// Kind returns the stable discriminator used for serialization.
	Kind() string
}

// PrivateImport details an import of a private module.
type PrivateImport struct {
	Module string   `json:"module"`
	Names  []string `json:"names,omitempty"`
}

// Kind implements FindingDetail.
func (PrivateImport) Kind() string { return "private_import" }

// PrivateAttribute details access to an underscore-prefixed attribute.
type PrivateAttribute struct {
	Attribute string `json:"attribute"`
	Object    string `json:"object,omitempty"`
}

// Kind implements FindingDetail.
func (PrivateAttribute) Kind() string { return "private_attribute" }

// PrivateCall details a call to an underscore-prefixed method on a non-self receiver.
type PrivateCall struct {
	Method   string `json:"method"`
	Receiver string `json:"receiver,omitempty"`
}

// Kind implements FindingDetail.
func (PrivateCall) Kind() string { return "private_call" }

// StructuralComparison details a representation-based equality check.
type StructuralComparison struct {
	// Construct names the flagged construct ("__dict__", "vars", "asdict", "repr", "str", "getattr").
	Construct string `json:"construct"`
}

// Kind implements FindingDetail.
func (StructuralComparison) Kind() string { return "structural_comparison" }

// MockOveruse details a test exceeding the mock-assertion threshold.
type MockOveruse struct {
	Count     int `json:"count"`
	Threshold int `json:"threshold"`
}

// Kind implements FindingDetail.
func (MockOveruse) Kind() string { return "mock_overuse" }

// AAAIssue details an Arrange-Act-Assert structure problem.
type AAAIssue struct {
	Found      []Section `json:"found,omitempty"`
	Missing    []Section `json:"missing,omitempty"`
	Duplicates []Section `json:"duplicates,omitempty"`
}

// Kind implements FindingDetail.
func (AAAIssue) Kind() string { return "aaa_issue" }

// ParseFailureDetail carries the reason a file could not be parsed.
type ParseFailureDetail struct {
	Reason string `json:"reason"`
}

// Kind implements FindingDetail.
func (ParseFailureDetail) Kind() string { return "parse_failure" }

type findingJSON struct {
	Code       RuleCode        `json:"code"`
	Name       string          `json:"name"`
	Severity   Severity        `json:"severity"`
	Message    string          `json:"message"`
	File       string          `json:"file"`
	Line       int             `json:"line"`
	Column     int             `json:"column,omitempty"`
	Confidence float64         `json:"confidence"`
	Suggestion string          `json:"suggestion,omitempty"`
	Fixable    bool            `json:"fixable"`
	Tags       []string        `json:"tags,omitempty"`
	DetailKind string          `json:"detailKind,omitempty"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

// MarshalJSON encodes the finding with a kind-tagged detail envelope.
func (f Finding) MarshalJSON() ([]byte, error) {
	out := findingJSON{
		Code:       f.Code,
		Name:       f.Name,
		Severity:   f.Severity,
		Message:    f.Message,
		File:       f.File,
		Line:       f.Line,
		Column:     f.Column,
		Confidence: f.Confidence,
		Suggestion: f.Suggestion,
		Fixable:    f.Fixable,
		Tags:       f.Tags,
	}

	if f.Detail != nil {
		raw, err := json.Marshal(f.Detail)
		if err != nil {
			return nil, fmt.Errorf("marshal finding detail: %w", err)
		}
		out.DetailKind = f.Detail.Kind()
		out.Detail = raw
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes the finding, restoring the concrete detail type from
// the kind tag. Unknown kinds leave Detail nil rather than failing.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var in findingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*f = Finding{
		Code:       in.Code,
		Name:       in.Name,
		Severity:   in.Severity,
		Message:    in.Message,
		File:       in.File,
		Line:       in.Line,
		Column:     in.Column,
		Confidence: in.Confidence,
		Suggestion: in.Suggestion,
		Fixable:    in.Fixable,
		Tags:       in.Tags,
	}

	if in.DetailKind == "" || len(in.Detail) == 0 {
		return nil
	}

	detail, err := decodeDetail(in.DetailKind, in.Detail)
	if err != nil {
		return err
	}
	f.Detail = detail
	return nil
}

func decodeDetail(kind string, raw json.RawMessage) (FindingDetail, error) {
	switch kind {
	case "private_import":
		var d PrivateImport
		return d, json.Unmarshal(raw, &d)
	case "private_attribute":
		var d PrivateAttribute
		return d, json.Unmarshal(raw, &d)
	case "private_call":
		var d PrivateCall
		return d, json.Unmarshal(raw, &d)
	case "structural_comparison":
		var d StructuralComparison
		return d, json.Unmarshal(raw, &d)
	case "mock_overuse":
		var d MockOveruse
		return d, json.Unmarshal(raw, &d)
	case "aaa_issue":
		var d AAAIssue
		return d, json.Unmarshal(raw, &d)
	case "parse_failure":
		var d ParseFailureDetail
		return d, json.Unmarshal(raw, &d)
	default:
		// Tolerate details from newer rule sets.
		return nil, nil
	}
}
