package domain

// Section is one part of the Arrange-Act-Assert test structure.
type Section string

// Canonical AAA sections.
const (
	SectionArrange Section = "arrange"
	SectionAct     Section = "act"
	SectionAssert  Section = "assert"
)

// CanonicalSectionOrder lists the sections in their expected order.
var CanonicalSectionOrder = []Section{SectionArrange, SectionAct, SectionAssert}

// Index returns the section's position in the canonical order, or -1.
func (s Section) Index() int {
	for i, sec := range CanonicalSectionOrder {
		if sec == s {
			return i
		}
	}
	return -1
}

// SectionMarker is a section label found in a test body comment.
type SectionMarker struct {
	// Section is the labeled section.
	Section Section `json:"section"`
	// Line is the 1-based line of the comment.
	Line int `json:"line"`
}

// AAAResult is the outcome of checking one test's Arrange-Act-Assert
// structure. It is produced and consumed within a single detector call.
type AAAResult struct {
	// HasComments reports whether any section marker comment was found.
	HasComments bool
	// CorrectOrder reports whether the found sections respect the canonical
	// order. Any duplicated section label makes this false.
	CorrectOrder bool
	// FoundOrder is the full sequence of section labels as they appear,
	// including repeats.
	FoundOrder []Section
	// Sections lists each marker with its line.
	Sections []SectionMarker
	// MissingSections lists canonical sections with no marker.
	MissingSections []Section
	// DuplicateSections lists sections labeled more than once.
	DuplicateSections []Section
}

// Complete reports whether all three canonical sections were found.
func (r AAAResult) Complete() bool {
	return len(r.MissingSections) == 0 && r.HasComments
}

// Compliant reports whether the test has all sections in the correct order.
func (r AAAResult) Compliant() bool {
	return r.Complete() && r.CorrectOrder
}
