// Package scoring turns findings and suite metrics into calibrated 0-100
// scores with letter grades.
package scoring

import (
	"github.com/battleready/core/pkg/domain"
	"github.com/battleready/core/pkg/rules"
)

// ImpactCategory classifies how a rule affects the Behavior Integrity Score.
type ImpactCategory string

// BIS impact categories.
const (
	ImpactHighPenalty   ImpactCategory = "high_penalty"
	ImpactMediumPenalty ImpactCategory = "medium_penalty"
	ImpactLowPenalty    ImpactCategory = "low_penalty"
	ImpactAdvisory      ImpactCategory = "advisory"
	ImpactReward        ImpactCategory = "reward"
)

// RuleMeta is the registry entry for one rule code.
type RuleMeta struct {
	// Name is the short rule name.
	Name string
	// Description explains what the rule detects.
	Description string
	// Severity is the rule's default severity.
	Severity domain.Severity
	// Tags are free-form labels.
	Tags []string
	// Fixable indicates whether an automated fix is plausible.
	Fixable bool
	// Impact is the rule's BIS category.
	Impact ImpactCategory
	// Weight scales the rule's contribution within its category.
	Weight float64
}

// Registry maps rule codes to their scoring metadata. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	rules map[domain.RuleCode]RuleMeta
}

// NewRegistry builds a registry from the given rule set.
func NewRegistry(ruleSet map[domain.RuleCode]RuleMeta) *Registry {
	rulesCopy := make(map[domain.RuleCode]RuleMeta, len(ruleSet))
	for code, meta := range ruleSet {
		rulesCopy[code] = meta
	}
	return &Registry{rules: rulesCopy}
}

// Lookup returns the metadata for a rule code.
func (r *Registry) Lookup(code domain.RuleCode) (RuleMeta, bool) {
	meta, ok := r.rules[code]
	return meta, ok
}

// Resolve returns a rule's impact category and weight. Unknown codes default
// to a medium penalty with weight 1.0 rather than failing.
func (r *Registry) Resolve(code domain.RuleCode) (ImpactCategory, float64) {
	if meta, ok := r.rules[code]; ok {
		return meta.Impact, meta.Weight
	}
	return ImpactMediumPenalty, 1.0
}

// DefaultRegistry returns the registry for the built-in rule set.
func DefaultRegistry() *Registry {
	return NewRegistry(map[domain.RuleCode]RuleMeta{
		rules.CodePrivateImport: {
			Name:        "private-import",
			Description: "Test imports a private module",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"encapsulation"},
			Impact:      ImpactHighPenalty,
			Weight:      1.0,
		},
		rules.CodePrivateAttribute: {
			Name:        "private-attribute-access",
			Description: "Test reads a private attribute",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"encapsulation"},
			Impact:      ImpactHighPenalty,
			Weight:      1.0,
		},
		rules.CodePrivateCall: {
			Name:        "private-method-call",
			Description: "Test calls a private method on a non-self receiver",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"encapsulation"},
			Impact:      ImpactHighPenalty,
			Weight:      1.0,
		},
		rules.CodeMissingAAA: {
			Name:        "missing-aaa-structure",
			Description: "Test lacks Arrange-Act-Assert structure comments",
			Severity:    domain.SeverityInfo,
			Tags:        []string{"structure"},
			Fixable:     true,
			Impact:      ImpactAdvisory,
			Weight:      1.0,
		},
		rules.CodeDuplicateAAA: {
			Name:        "duplicate-aaa-sections",
			Description: "Test repeats AAA section labels",
			Severity:    domain.SeverityInfo,
			Tags:        []string{"structure"},
			Impact:      ImpactAdvisory,
			Weight:      1.0,
		},
		rules.CodeAAAOrder: {
			Name:        "aaa-incorrect-order",
			Description: "Test has AAA sections out of order",
			Severity:    domain.SeverityInfo,
			Tags:        []string{"structure"},
			Impact:      ImpactAdvisory,
			Weight:      1.0,
		},
		rules.CodeIncompleteAAA: {
			Name:        "incomplete-aaa-structure",
			Description: "Test is missing AAA sections",
			Severity:    domain.SeverityInfo,
			Tags:        []string{"structure"},
			Impact:      ImpactAdvisory,
			Weight:      1.0,
		},
		rules.CodeDictComparison: {
			Name:        "dict-comparison",
			Description: "Test compares the full __dict__ of an object",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"assertion"},
			Impact:      ImpactMediumPenalty,
			Weight:      1.5,
		},
		rules.CodeVarsComparison: {
			Name:        "vars-comparison",
			Description: "Test compares a vars() field dump",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"assertion"},
			Impact:      ImpactMediumPenalty,
			Weight:      1.5,
		},
		rules.CodeAsdictComparison: {
			Name:        "asdict-comparison",
			Description: "Test compares a dataclass converted to a mapping",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"assertion"},
			Impact:      ImpactMediumPenalty,
			Weight:      1.5,
		},
		rules.CodeReprComparison: {
			Name:        "repr-comparison",
			Description: "Test compares repr() output",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"assertion"},
			Impact:      ImpactMediumPenalty,
			Weight:      1.0,
		},
		rules.CodeStrComparison: {
			Name:        "str-comparison",
			Description: "Test compares str() output",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"assertion"},
			Impact:      ImpactLowPenalty,
			Weight:      1.0,
		},
		rules.CodePrivateGetattr: {
			Name:        "private-getattr",
			Description: "Test reads a private attribute via getattr",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"encapsulation", "assertion"},
			Impact:      ImpactMediumPenalty,
			Weight:      1.5,
		},
		rules.CodeMockOverspecification: {
			Name:        "mock-overspecification",
			Description: "Test asserts on too many mock interactions",
			Severity:    domain.SeverityWarning,
			Tags:        []string{"mocking"},
			Impact:      ImpactMediumPenalty,
			Weight:      1.0,
		},
		rules.CodeParseFailure: {
			Name:        "parse-failure",
			Description: "File could not be parsed",
			Severity:    domain.SeverityError,
			Tags:        []string{"infrastructure"},
			Impact:      ImpactLowPenalty,
			Weight:      1.0,
		},
	})
}
