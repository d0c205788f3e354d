package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/battleready/core/pkg/analyzer/pyast"
	"github.com/battleready/core/pkg/domain"
)

const aaaConfidence = 0.7

// sectionSynonyms maps each AAA section to its marker keywords, checked in
// canonical section order.
var sectionSynonyms = []struct {
	section domain.Section
	words   []string
}{
	{domain.SectionArrange, []string{"arrange", "setup", "given", "prepare", "initialize"}},
	{domain.SectionAct, []string{"act", "when", "execute", "perform", "run"}},
	{domain.SectionAssert, []string{"assert", "then", "verify", "check", "expect"}},
}

// continuationWords are second words that indicate plain prose rather than a
// section label ("# run the server" is not an Act marker).
var continuationWords = map[string]bool{
	"a": true, "an": true, "is": true, "it": true, "in": true, "on": true,
	"that": true, "the": true, "this": true, "to": true, "will": true,
}

// AAADetector checks each test's comments for Arrange-Act-Assert structure.
type AAADetector struct{}

// NewAAADetector returns an AAA-structure detector.
func NewAAADetector() *AAADetector {
	return &AAADetector{}
}

// Name implements Detector.
func (d *AAADetector) Name() string { return "aaa-structure" }

// Analyze implements Detector. At most one finding is reported per test, in
// priority order: no sections, duplicate sections, incorrect order, missing
// sections.
func (d *AAADetector) Analyze(root *sitter.Node, source []byte, path string) ([]domain.Finding, error) {
	var findings []domain.Finding

	for _, test := range pyast.CollectTestFunctions(root, source) {
		result := EvaluateAAA(pyast.Comments(test, source))
		line := pyast.Line(test.Node)

		finding := domain.Finding{
			Severity:   domain.SeverityInfo,
			File:       path,
			Line:       line,
			Confidence: aaaConfidence,
		}

		switch {
		case !result.HasComments:
			finding.Code = CodeMissingAAA
			finding.Name = "missing-aaa-structure"
			finding.Message = fmt.Sprintf("test %q lacks AAA structure comments", test.Name)
			finding.Suggestion = "Add # Arrange, # Act, # Assert comments to clarify the test's structure"
			finding.Detail = domain.AAAIssue{Missing: append([]domain.Section(nil), domain.CanonicalSectionOrder...)}

		case len(result.DuplicateSections) > 0:
			finding.Code = CodeDuplicateAAA
			finding.Name = "duplicate-aaa-sections"
			finding.Message = fmt.Sprintf("test %q has duplicate AAA sections: %s", test.Name, joinSections(result.DuplicateSections))
			finding.Suggestion = "Split the test or merge the repeated sections into one"
			finding.Detail = domain.AAAIssue{Found: result.FoundOrder, Duplicates: result.DuplicateSections}

		case !result.CorrectOrder:
			finding.Code = CodeAAAOrder
			finding.Name = "aaa-incorrect-order"
			finding.Message = fmt.Sprintf("test %q has AAA sections in incorrect order: %s", test.Name, joinSections(result.FoundOrder))
			finding.Suggestion = "Reorder the test body to Arrange, then Act, then Assert"
			finding.Detail = domain.AAAIssue{Found: result.FoundOrder}

		case len(result.MissingSections) > 0:
			finding.Code = CodeIncompleteAAA
			finding.Name = "incomplete-aaa-structure"
			finding.Message = fmt.Sprintf("test %q is missing AAA sections: %s", test.Name, joinSections(result.MissingSections))
			finding.Suggestion = "Label the remaining sections to complete the AAA structure"
			finding.Detail = domain.AAAIssue{Found: result.FoundOrder, Missing: result.MissingSections}

		default:
			continue
		}

		findings = append(findings, finding)
	}

	return findings, nil
}

// EvaluateAAA inspects a test's comments for AAA section markers.
func EvaluateAAA(comments []pyast.Comment) domain.AAAResult {
	var result domain.AAAResult

	for _, comment := range comments {
		for _, marker := range markersIn(comment) {
			result.Sections = append(result.Sections, marker)
			result.FoundOrder = append(result.FoundOrder, marker.Section)
		}
	}

	result.HasComments = len(result.Sections) > 0

	counts := make(map[domain.Section]int)
	firstIndex := make(map[domain.Section]int)
	for i, section := range result.FoundOrder {
		if counts[section] == 0 {
			firstIndex[section] = i
		}
		counts[section]++
	}

	for _, section := range domain.CanonicalSectionOrder {
		switch {
		case counts[section] == 0:
			result.MissingSections = append(result.MissingSections, section)
		case counts[section] > 1:
			result.DuplicateSections = append(result.DuplicateSections, section)
		}
	}

	result.CorrectOrder = correctOrder(result, firstIndex)
	return result
}

// correctOrder checks that every pair of found sections respects the canonical
// order. Any duplicated section makes the order incorrect regardless of the
// relative positions.
func correctOrder(result domain.AAAResult, firstIndex map[domain.Section]int) bool {
	if !result.HasComments || len(result.DuplicateSections) > 0 {
		return false
	}

	order := domain.CanonicalSectionOrder
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			earlier, earlierFound := firstIndex[order[i]]
			later, laterFound := firstIndex[order[j]]
			if earlierFound && laterFound && earlier >= later {
				return false
			}
		}
	}
	return true
}

// markersIn extracts section markers from one comment. The comment is split
// into segments on label separators, so "# Arrange, Act, Assert" yields all
// three sections. A segment is a marker only when a synonym is its first word
// and the next word is not a prose continuation.
func markersIn(comment pyast.Comment) []domain.SectionMarker {
	text := strings.ToLower(strings.TrimSpace(strings.TrimLeft(comment.Text, "#")))
	if text == "" {
		return nil
	}

	var markers []domain.SectionMarker
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ':' || r == '/' || r == '&'
	})

	for _, segment := range segments {
		words := strings.Fields(segment)
		if len(words) == 0 {
			continue
		}
		first := strings.Trim(words[0], ".-_!()[]")

		section, ok := matchSection(first)
		if !ok {
			continue
		}
		if len(words) > 1 && continuationWords[strings.Trim(words[1], ".-_!()[]")] {
			continue
		}
		markers = append(markers, domain.SectionMarker{Section: section, Line: comment.Line})
	}

	return markers
}

func matchSection(word string) (domain.Section, bool) {
	for _, entry := range sectionSynonyms {
		for _, synonym := range entry.words {
			if word == synonym {
				return entry.section, true
			}
		}
	}
	return "", false
}

func joinSections(sections []domain.Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
