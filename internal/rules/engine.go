package rules

import "oakdex/internal/catalog"

// DefaultEngine recomputes visibility, collapse state, progress counters and
// completion transitions from scratch on every pass. Rule order matters:
// later passes may hide items earlier passes left visible, never the reverse.
type DefaultEngine struct{}

func NewEngine() *DefaultEngine { return &DefaultEngine{} }

type sectionView struct {
	key       string
	required  int
	objective string
	items     []catalog.ItemEntry
}

func (e *DefaultEngine) Evaluate(in Input) Directive {
	sections := groupSections(in.Entries)

	d := Directive{
		HiddenItems:     map[string]bool{},
		Collapsed:       map[string]bool{},
		SectionCaught:   map[string]int{},
		SectionComplete: map[string]bool{},
		Total:           in.Total,
		Objective:       AllObjectivesComplete,
	}

	e.applyExclusivity(in, sections, d.HiddenItems)
	e.applyDedup(in, d.HiddenItems)

	// Completion counts include hidden items: a caught starter still counts
	// even while its line's alternatives are hidden.
	for _, s := range sections {
		caught := 0
		for _, it := range s.items {
			if in.Progress[it.ID] {
				caught++
			}
		}
		d.SectionCaught[s.key] = caught
		d.Caught += caught
		d.SectionComplete[s.key] = s.required > 0 && caught >= s.required
	}

	for _, s := range sections {
		if d.SectionComplete[s.key] && !in.Credited[s.key] {
			d.NewlyCompleted = append(d.NewlyCompleted, s.key)
		}
	}

	// Auto-collapse derivation, then the explicit user layer on top.
	for _, s := range sections {
		if d.SectionComplete[s.key] && !in.UserExpanded[s.key] {
			d.Collapsed[s.key] = true
		}
		if in.UserCollapsed[s.key] {
			d.Collapsed[s.key] = true
		}
	}

	for _, s := range sections {
		if s.required > 0 && !d.SectionComplete[s.key] {
			d.Objective = s.objective
			break
		}
	}

	return d
}

// applyExclusivity hides every family except the chosen one per group. The
// chosen family is the first in declaration order with any caught item; with
// no caught item all alternatives stay visible. Multiple simultaneously
// caught families only happen through stale store rows; the declaration-order
// tie-break keeps the outcome deterministic.
func (e *DefaultEngine) applyExclusivity(in Input, sections []sectionView, hidden map[string]bool) {
	for _, g := range in.Exclusive {
		var sec *sectionView
		for i := range sections {
			if sections[i].key == g.Section {
				sec = &sections[i]
				break
			}
		}
		if sec == nil {
			continue
		}

		families := make([][]catalog.ItemEntry, len(g.Families))
		for fi, names := range g.Families {
			members := map[string]bool{}
			for _, name := range names {
				members[catalog.NormalizeName(name)] = true
			}
			for _, it := range sec.items {
				if members[it.Normalized] {
					families[fi] = append(families[fi], it)
				}
			}
		}

		chosen := -1
		for fi, family := range families {
			for _, it := range family {
				if in.Progress[it.ID] {
					chosen = fi
					break
				}
			}
			if chosen >= 0 {
				break
			}
		}
		if chosen < 0 {
			continue
		}
		for fi, family := range families {
			if fi == chosen {
				continue
			}
			for _, it := range family {
				hidden[it.ID] = true
			}
		}
	}
}

// applyDedup collapses cross-section duplicates of one creature: once any
// member of a name class is caught, only the first caught member (declaration
// order) stays visible.
func (e *DefaultEngine) applyDedup(in Input, hidden map[string]bool) {
	for _, name := range in.DedupeNames {
		class := catalog.NormalizeName(name)
		if class == "" {
			continue
		}
		var members []catalog.ItemEntry
		kept := ""
		for _, entry := range in.Entries {
			it, ok := entry.(catalog.ItemEntry)
			if !ok || it.Normalized != class {
				continue
			}
			members = append(members, it)
			if kept == "" && in.Progress[it.ID] {
				kept = it.ID
			}
		}
		if kept == "" {
			continue
		}
		for _, it := range members {
			if it.ID != kept {
				hidden[it.ID] = true
			}
		}
	}
}

func groupSections(entries []catalog.Entry) []sectionView {
	var sections []sectionView
	for _, entry := range entries {
		switch v := entry.(type) {
		case catalog.SectionHeader:
			sections = append(sections, sectionView{
				key:       v.Key,
				required:  v.Required,
				objective: v.ObjectiveLabel,
			})
		case catalog.ItemEntry:
			if len(sections) == 0 {
				continue
			}
			last := &sections[len(sections)-1]
			last.items = append(last.items, v)
		}
	}
	return sections
}
