package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/battleready/core/pkg/analyzer/pyast"
	"github.com/battleready/core/pkg/domain"
)

// Confidence levels for private-access findings.
const (
	privateImportConfidence    = 0.9
	privateAttributeConfidence = 0.8
	privateCallConfidence      = 0.8
)

// PrivateAccessDetector flags tests that reach into private members: imports
// of private modules, underscore-prefixed attribute access, and calls to
// underscore-prefixed methods on non-self receivers.
type PrivateAccessDetector struct{}

// NewPrivateAccessDetector returns a private-access detector.
func NewPrivateAccessDetector() *PrivateAccessDetector {
	return &PrivateAccessDetector{}
}

// Name implements Detector.
func (d *PrivateAccessDetector) Name() string { return "private-access" }

// Analyze implements Detector.
func (d *PrivateAccessDetector) Analyze(root *sitter.Node, source []byte, path string) ([]domain.Finding, error) {
	var findings []domain.Finding

	for _, imp := range pyast.Imports(root, source) {
		if !isPrivateModule(imp.Module) {
			continue
		}
		findings = append(findings, domain.Finding{
			Code:       CodePrivateImport,
			Name:       "private-import",
			Severity:   domain.SeverityWarning,
			Message:    fmt.Sprintf("imports private module %q", imp.Module),
			File:       path,
			Line:       pyast.Line(imp.Node),
			Column:     int(imp.Node.StartPoint().Column),
			Confidence: privateImportConfidence,
			Suggestion: "Import from the module's public API instead",
			Detail:     domain.PrivateImport{Module: imp.Module, Names: imp.Names},
		})
	}

	for _, test := range pyast.CollectTestFunctions(root, source) {
		findings = append(findings, d.analyzeTest(test, source, path)...)
	}

	return findings, nil
}

func (d *PrivateAccessDetector) analyzeTest(test pyast.TestFunc, source []byte, path string) []domain.Finding {
	var findings []domain.Finding

	for _, attr := range pyast.AttributeNodes(test) {
		name := pyast.Text(attr.ChildByFieldName("attribute"), source)
		if !strings.HasPrefix(name, "_") {
			continue
		}
		// Callee-position attributes are the method-call rule's concern;
		// skipping them here avoids double-reporting.
		if isCallee(attr) {
			continue
		}
		receiver := pyast.Receiver(attr, source)
		findings = append(findings, domain.Finding{
			Code:       CodePrivateAttribute,
			Name:       "private-attribute-access",
			Severity:   domain.SeverityWarning,
			Message:    fmt.Sprintf("test %q accesses private attribute %q of %q", test.Name, name, receiver),
			File:       path,
			Line:       pyast.Line(attr),
			Column:     int(attr.StartPoint().Column),
			Confidence: privateAttributeConfidence,
			Suggestion: "Assert on behavior exposed by the public API instead of internal state",
			Detail:     domain.PrivateAttribute{Attribute: name, Object: receiver},
		})
	}

	for _, call := range pyast.CallNodes(test) {
		attr := pyast.CalleeAttribute(call)
		if attr == nil {
			continue
		}
		method := pyast.Text(attr.ChildByFieldName("attribute"), source)
		if !strings.HasPrefix(method, "_") {
			continue
		}
		// Calls on self or a chain rooted at self are legitimate internal use.
		if pyast.IsSelfRooted(attr, source) {
			continue
		}
		receiver := pyast.Receiver(attr, source)
		findings = append(findings, domain.Finding{
			Code:       CodePrivateCall,
			Name:       "private-method-call",
			Severity:   domain.SeverityWarning,
			Message:    fmt.Sprintf("test %q calls private method %q of %q", test.Name, method, receiver),
			File:       path,
			Line:       pyast.Line(call),
			Column:     int(call.StartPoint().Column),
			Confidence: privateCallConfidence,
			Suggestion: "Exercise the behavior through a public method instead",
			Detail:     domain.PrivateCall{Method: method, Receiver: receiver},
		})
	}

	return findings
}

// isCallee reports whether the attribute node is the function child of a call.
func isCallee(attr *sitter.Node) bool {
	parent := attr.Parent()
	if parent == nil || parent.Type() != pyast.NodeCall {
		return false
	}
	fn := parent.ChildByFieldName("function")
	return fn != nil && fn.Equal(attr)
}

// isPrivateModule reports whether a dotted module path names a private module:
// any underscore-prefixed segment (dunder modules like __future__ excluded) or
// a *_internal / *_impl naming convention.
func isPrivateModule(module string) bool {
	for _, part := range strings.Split(module, ".") {
		if part == "" || part == "__future__" {
			continue
		}
		if strings.HasPrefix(part, "_") {
			return true
		}
		if strings.HasSuffix(part, "_internal") || strings.HasSuffix(part, "_impl") {
			return true
		}
	}
	return false
}
