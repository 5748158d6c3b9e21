package rules

import "oakdex/internal/catalog"

// Input is a snapshot of everything one evaluation pass reads. Evaluate never
// mutates any of it; the orchestrator owns the maps and persists changes.
type Input struct {
	// Entries is the flattened catalog in declaration order.
	Entries []catalog.Entry
	// Progress maps item id to caught. Absent means not caught.
	Progress map[string]bool
	// Exclusive declares mutually exclusive families per section.
	Exclusive []catalog.ExclusiveGroup
	// DedupeNames lists display names whose duplicates across sections should
	// collapse to a single visible row once any of them is caught.
	DedupeNames []string
	// UserExpanded holds section keys the user forced open; such sections are
	// never auto-collapsed while complete.
	UserExpanded map[string]bool
	// UserCollapsed holds section keys the user explicitly collapsed,
	// applied as an override layer after auto-collapse derivation.
	UserCollapsed map[string]bool
	// Credited holds section keys already awarded a completion event. The
	// transition check runs against this set, not a previous-frame value, so
	// reloads cannot replay events.
	Credited map[string]bool
	// Total is the headline item count for the progress counter.
	Total int
}

// Directive is the consistent view the engine derives from one Input. Two
// evaluations of the same Input yield equal Directives.
type Directive struct {
	// HiddenItems holds item ids hidden by exclusivity or dedup rules.
	// Collapse-driven hiding is expressed via Collapsed instead.
	HiddenItems map[string]bool
	// Collapsed holds section keys whose items the view should fold away.
	Collapsed map[string]bool
	// SectionCaught counts progress-true items per section, hidden or not.
	SectionCaught map[string]int
	// SectionComplete reports threshold completion per section.
	SectionComplete map[string]bool
	// NewlyCompleted lists sections that flipped to complete and are not yet
	// credited, in declaration order.
	NewlyCompleted []string
	Caught         int
	Total          int
	// Objective labels the first incomplete section in declaration order.
	Objective string
}

// AllObjectivesComplete is the terminal objective label once every section
// with a threshold is complete.
const AllObjectivesComplete = "ALL OBJECTIVES COMPLETE"
