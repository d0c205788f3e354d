package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/battleready/core/pkg/analyzer/pyast"
	"github.com/battleready/core/pkg/domain"
)

// StructuralEqualityDetector flags assertions that compare object
// representations instead of behavior: __dict__ access, vars()/asdict()
// field dumps, repr()/str() comparisons, and getattr of private names.
type StructuralEqualityDetector struct{}

// NewStructuralEqualityDetector returns a structural-equality detector.
func NewStructuralEqualityDetector() *StructuralEqualityDetector {
	return &StructuralEqualityDetector{}
}

// Name implements Detector.
func (d *StructuralEqualityDetector) Name() string { return "structural-equality" }

// Analyze implements Detector.
func (d *StructuralEqualityDetector) Analyze(root *sitter.Node, source []byte, path string) ([]domain.Finding, error) {
	var findings []domain.Finding

	for _, test := range pyast.CollectTestFunctions(root, source) {
		pyast.WalkTest(test.Body, func(node *sitter.Node) bool {
			if f := d.check(node, test, source, path); f != nil {
				findings = append(findings, *f)
			}
			return true
		})
	}

	return findings, nil
}

func (d *StructuralEqualityDetector) check(node *sitter.Node, test pyast.TestFunc, source []byte, path string) *domain.Finding {
	switch node.Type() {
	case pyast.NodeAttribute:
		name := pyast.Text(node.ChildByFieldName("attribute"), source)
		if name == "__dict__" && inAssertionContext(node, test.Body, source) {
			return d.finding(CodeDictComparison, "dict-comparison", "__dict__", 0.9, node, test, path,
				"compares the full __dict__ of an object",
				"Assert on the specific public fields the behavior guarantees")
		}

	case pyast.NodeCall:
		if !inAssertionContext(node, test.Body, source) {
			return nil
		}

		callee := pyast.CalleeName(node, source)
		switch callee {
		case "vars":
			return d.finding(CodeVarsComparison, "vars-comparison", "vars", 0.9, node, test, path,
				"compares a vars() field dump",
				"Assert on the specific public fields the behavior guarantees")
		case "asdict":
			return d.finding(CodeAsdictComparison, "asdict-comparison", "asdict", 0.9, node, test, path,
				"compares a dataclass converted to a mapping",
				"Assert on the specific public fields the behavior guarantees")
		case "repr":
			return d.finding(CodeReprComparison, "repr-comparison", "repr", 0.8, node, test, path,
				"compares object repr() output",
				"Assert on the object's observable state, not its representation")
		case "str":
			return d.finding(CodeStrComparison, "str-comparison", "str", 0.7, node, test, path,
				"compares object str() output",
				"Assert on the object's observable state, not its string form")
		case "getattr":
			if privateGetattrTarget(node, source) {
				return d.finding(CodePrivateGetattr, "private-getattr", "getattr", 0.9, node, test, path,
					"reads a private attribute via getattr",
					"Assert on behavior exposed by the public API instead of internal state")
			}
		}
	}

	return nil
}

func (d *StructuralEqualityDetector) finding(code domain.RuleCode, name, construct string, confidence float64, node *sitter.Node, test pyast.TestFunc, path, what, suggestion string) *domain.Finding {
	return &domain.Finding{
		Code:       code,
		Name:       name,
		Severity:   domain.SeverityWarning,
		Message:    fmt.Sprintf("test %q %s", test.Name, what),
		File:       path,
		Line:       pyast.Line(node),
		Column:     int(node.StartPoint().Column),
		Confidence: confidence,
		Suggestion: suggestion,
		Detail:     domain.StructuralComparison{Construct: construct},
	}
}

// privateGetattrTarget reports whether the call's second argument is a string
// constant naming a private attribute.
func privateGetattrTarget(call *sitter.Node, source []byte) bool {
	args := pyast.ArgumentNodes(call)
	if len(args) < 2 || args[1].Type() != pyast.NodeString {
		return false
	}
	target := strings.Trim(pyast.Text(args[1], source), `"'`)
	return strings.HasPrefix(target, "_")
}

// inAssertionContext reports whether a node sits inside an assert statement,
// a comparison, or an assert* method call within the test body.
func inAssertionContext(node, body *sitter.Node, source []byte) bool {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Type() {
		case pyast.NodeAssertStatement, pyast.NodeComparisonOperator:
			return true
		case pyast.NodeCall:
			if strings.HasPrefix(pyast.CalleeName(parent, source), "assert") {
				return true
			}
		}
		if body != nil && parent.Equal(body) {
			return false
		}
	}
	return false
}
