package rules

import (
	"fmt"
	"reflect"
	"testing"

	"oakdex/internal/catalog"
)

func starterCatalog() catalog.Catalog {
	return catalog.Catalog{
		Sections: []catalog.Section{
			{
				Key:            "STARTER",
				Title:          "Choose Your Starter!",
				ObjectiveLabel: "BEFORE PEWTER GYM",
				Required:       1,
				Pokemon: []catalog.Item{
					{Dex: 1, Name: "Bulbasaur"},
					{Dex: 4, Name: "Charmander"},
					{Dex: 7, Name: "Squirtle"},
				},
				Families: [][]string{{"Bulbasaur"}, {"Charmander"}, {"Squirtle"}},
			},
		},
		Total: 1,
	}
}

func pewterCatalog() catalog.Catalog {
	items := make([]catalog.Item, 20)
	for i := range items {
		items[i] = catalog.Item{Dex: 16 + i, Name: fmt.Sprintf("Route Mon %02d", i)}
	}
	return catalog.Catalog{
		Sections: []catalog.Section{
			{Key: "PEWTER", Title: "Pewter Pokemon", ObjectiveLabel: "BEFORE PEWTER GYM", Required: 18, Pokemon: items},
		},
		Total: 18,
	}
}

func inputFor(c catalog.Catalog, progress map[string]bool) Input {
	return Input{
		Entries:       catalog.Flatten(c),
		Progress:      progress,
		Exclusive:     c.AllExclusiveGroups(),
		DedupeNames:   c.DedupeFinalEvos,
		UserExpanded:  map[string]bool{},
		UserCollapsed: map[string]bool{},
		Credited:      map[string]bool{},
		Total:         c.Total,
	}
}

func TestBaselineEverythingVisibleAndExpanded(t *testing.T) {
	d := NewEngine().Evaluate(inputFor(starterCatalog(), map[string]bool{}))
	if len(d.HiddenItems) != 0 {
		t.Fatalf("expected nothing hidden before any choice, got %v", d.HiddenItems)
	}
	if len(d.Collapsed) != 0 {
		t.Fatalf("expected nothing collapsed, got %v", d.Collapsed)
	}
	if d.Caught != 0 || d.SectionCaught["STARTER"] != 0 {
		t.Fatalf("expected zero counters, got %+v", d)
	}
}

func TestExclusivityHidesAlternativesOnceChosen(t *testing.T) {
	eng := NewEngine()
	progress := map[string]bool{"STARTER:000": true}

	d := eng.Evaluate(inputFor(starterCatalog(), progress))
	if d.HiddenItems["STARTER:000"] {
		t.Fatalf("chosen item must stay visible")
	}
	if !d.HiddenItems["STARTER:001"] || !d.HiddenItems["STARTER:002"] {
		t.Fatalf("expected other families hidden, got %v", d.HiddenItems)
	}

	// Untoggling the choice re-shows every alternative.
	d = eng.Evaluate(inputFor(starterCatalog(), map[string]bool{}))
	if len(d.HiddenItems) != 0 {
		t.Fatalf("expected all alternatives visible again, got %v", d.HiddenItems)
	}
}

func TestExclusivityTieBreakPrefersDeclarationOrder(t *testing.T) {
	// Two families simultaneously caught only happens through stale store
	// rows; the first declared family wins.
	progress := map[string]bool{"STARTER:001": true, "STARTER:002": true}
	d := NewEngine().Evaluate(inputFor(starterCatalog(), progress))
	if d.HiddenItems["STARTER:001"] {
		t.Fatalf("first caught family in declaration order must stay visible")
	}
	if !d.HiddenItems["STARTER:000"] || !d.HiddenItems["STARTER:002"] {
		t.Fatalf("expected later family hidden, got %v", d.HiddenItems)
	}
}

func TestExclusivityHidesWholeFamilyNotJustCaughtMember(t *testing.T) {
	c := catalog.Catalog{
		Sections: []catalog.Section{
			{
				Key:      "FOSSIL",
				Title:    "Revive One Fossil Line",
				Required: 2,
				Pokemon: []catalog.Item{
					{Dex: 138, Name: "Omanyte"},
					{Dex: 139, Name: "Omastar"},
					{Dex: 140, Name: "Kabuto"},
					{Dex: 141, Name: "Kabutops"},
				},
			},
		},
		ExclusiveGroups: []catalog.ExclusiveGroup{
			{Section: "FOSSIL", Families: [][]string{{"Omanyte", "Omastar"}, {"Kabuto", "Kabutops"}}},
		},
		Total: 2,
	}
	d := NewEngine().Evaluate(inputFor(c, map[string]bool{"FOSSIL:002": true}))
	if !d.HiddenItems["FOSSIL:000"] || !d.HiddenItems["FOSSIL:001"] {
		t.Fatalf("expected entire Omanyte line hidden, got %v", d.HiddenItems)
	}
	if d.HiddenItems["FOSSIL:002"] || d.HiddenItems["FOSSIL:003"] {
		t.Fatalf("chosen family must remain fully visible, got %v", d.HiddenItems)
	}
}

func dedupCatalog() catalog.Catalog {
	return catalog.Catalog{
		Sections: []catalog.Section{
			{
				Key: "MOON STONE 1", Title: "Choose Two Moon Stone Evolutions", Required: 2,
				Pokemon: []catalog.Item{
					{Dex: 34, Name: "Nidoking"},
					{Dex: 31, Name: "Nidoqueen"},
					{Dex: 36, Name: "Clefable"},
					{Dex: 40, Name: "Wigglytuff"},
				},
			},
			{
				Key: "MOON STONE 2", Title: "Remaining Moon Stone Evolutions", Required: 2,
				Pokemon: []catalog.Item{
					{Dex: 34, Name: "Nidoking"},
					{Dex: 31, Name: "Nidoqueen"},
					{Dex: 36, Name: "Clefable"},
					{Dex: 40, Name: "Wigglytuff"},
				},
			},
		},
		DedupeFinalEvos: []string{"Nidoking", "Nidoqueen", "Clefable", "Wigglytuff"},
		Total:           4,
	}
}

func TestDedupHidesDuplicateAcrossSections(t *testing.T) {
	d := NewEngine().Evaluate(inputFor(dedupCatalog(), map[string]bool{"MOON STONE 1:000": true}))
	if !d.HiddenItems["MOON STONE 2:000"] {
		t.Fatalf("expected later Nidoking duplicate hidden, got %v", d.HiddenItems)
	}
	if d.HiddenItems["MOON STONE 1:000"] {
		t.Fatalf("caught member must stay visible")
	}
	// Untouched classes stay fully visible.
	if d.HiddenItems["MOON STONE 1:002"] || d.HiddenItems["MOON STONE 2:002"] {
		t.Fatalf("unrelated class must not be hidden")
	}
}

func TestDedupTieBreakKeepsFirstCaughtMember(t *testing.T) {
	progress := map[string]bool{"MOON STONE 1:002": true, "MOON STONE 2:002": true}
	d := NewEngine().Evaluate(inputFor(dedupCatalog(), progress))
	if d.HiddenItems["MOON STONE 1:002"] {
		t.Fatalf("first caught member in declaration order must stay visible")
	}
	if !d.HiddenItems["MOON STONE 2:002"] {
		t.Fatalf("later duplicate must be hidden even while caught")
	}
}

func TestCompletionThresholdAndAchievementQueue(t *testing.T) {
	progress := map[string]bool{}
	for i := 0; i < 17; i++ {
		progress[catalog.MakeItemID("PEWTER", i)] = true
	}
	eng := NewEngine()

	d := eng.Evaluate(inputFor(pewterCatalog(), progress))
	if d.SectionComplete["PEWTER"] {
		t.Fatalf("17/18 must not be complete")
	}
	if len(d.NewlyCompleted) != 0 {
		t.Fatalf("no achievement before the threshold, got %v", d.NewlyCompleted)
	}

	progress[catalog.MakeItemID("PEWTER", 17)] = true
	d = eng.Evaluate(inputFor(pewterCatalog(), progress))
	if !d.SectionComplete["PEWTER"] {
		t.Fatalf("18/18 of required must be complete")
	}
	if len(d.NewlyCompleted) != 1 || d.NewlyCompleted[0] != "PEWTER" {
		t.Fatalf("expected PEWTER completion event, got %v", d.NewlyCompleted)
	}
	if !d.Collapsed["PEWTER"] {
		t.Fatalf("complete section should auto-collapse")
	}
}

func TestCreditedSectionNeverReplaysAchievement(t *testing.T) {
	// Reload scenario: completion recomputes true but the tracker already
	// holds the key.
	progress := map[string]bool{}
	for i := 0; i < 18; i++ {
		progress[catalog.MakeItemID("PEWTER", i)] = true
	}
	in := inputFor(pewterCatalog(), progress)
	in.Credited["PEWTER"] = true

	d := NewEngine().Evaluate(in)
	if len(d.NewlyCompleted) != 0 {
		t.Fatalf("credited section must not fire again, got %v", d.NewlyCompleted)
	}
	if !d.SectionComplete["PEWTER"] {
		t.Fatalf("completion itself still holds")
	}
}

func TestRequiredZeroSectionNeverCompletes(t *testing.T) {
	c := starterCatalog()
	c.Sections[0].Required = 0
	progress := map[string]bool{"STARTER:000": true, "STARTER:001": true, "STARTER:002": true}
	d := NewEngine().Evaluate(inputFor(c, progress))
	if d.SectionComplete["STARTER"] {
		t.Fatalf("required=0 must never complete via the threshold")
	}
	if len(d.NewlyCompleted) != 0 {
		t.Fatalf("no events for threshold-less sections")
	}
}

func TestUserExpandedBlocksAutoCollapse(t *testing.T) {
	in := inputFor(starterCatalog(), map[string]bool{"STARTER:000": true})
	in.UserExpanded["STARTER"] = true
	d := NewEngine().Evaluate(in)
	if !d.SectionComplete["STARTER"] {
		t.Fatalf("section should be complete")
	}
	if d.Collapsed["STARTER"] {
		t.Fatalf("user-expanded section must never auto-collapse")
	}
}

func TestUserCollapseOverridesIncompleteSection(t *testing.T) {
	in := inputFor(starterCatalog(), map[string]bool{})
	in.UserCollapsed["STARTER"] = true
	d := NewEngine().Evaluate(in)
	if !d.Collapsed["STARTER"] {
		t.Fatalf("explicit collapse applies regardless of completion")
	}
}

func TestIncompletenessStopsForcingCollapseButKeepsUserExpandedIrrelevant(t *testing.T) {
	// Complete then incomplete again: auto-collapse memory is derived, so it
	// simply vanishes; the lingering user-expanded mark changes nothing.
	in := inputFor(starterCatalog(), map[string]bool{})
	in.UserExpanded["STARTER"] = true
	d := NewEngine().Evaluate(in)
	if d.Collapsed["STARTER"] {
		t.Fatalf("incomplete section must not be collapsed")
	}
}

func TestCountersMatchProgressEverywhere(t *testing.T) {
	progress := map[string]bool{}
	for i := 0; i < 12; i++ {
		progress[catalog.MakeItemID("PEWTER", i)] = true
	}
	d := NewEngine().Evaluate(inputFor(pewterCatalog(), progress))
	if d.Caught != 12 {
		t.Fatalf("expected global caught 12, got %d", d.Caught)
	}
	if d.SectionCaught["PEWTER"] != 12 {
		t.Fatalf("expected section caught 12, got %d", d.SectionCaught["PEWTER"])
	}
	if d.Total != 18 {
		t.Fatalf("expected total 18, got %d", d.Total)
	}
}

func TestHiddenItemsStillCountTowardCompletion(t *testing.T) {
	d := NewEngine().Evaluate(inputFor(starterCatalog(), map[string]bool{"STARTER:000": true}))
	if d.SectionCaught["STARTER"] != 1 || d.Caught != 1 {
		t.Fatalf("caught starter must count while alternatives are hidden")
	}
}

func TestObjectiveIsFirstIncompleteSection(t *testing.T) {
	c := catalog.Catalog{
		Sections: []catalog.Section{
			{Key: "STARTER", Title: "Starter", ObjectiveLabel: "BEFORE PEWTER GYM", Required: 1,
				Pokemon: []catalog.Item{{Dex: 1, Name: "Bulbasaur"}}},
			{Key: "PEWTER", Title: "Pewter", ObjectiveLabel: "BEFORE CERULEAN GYM", Required: 1,
				Pokemon: []catalog.Item{{Dex: 16, Name: "Pidgey"}}},
		},
		Total: 2,
	}
	eng := NewEngine()

	d := eng.Evaluate(inputFor(c, map[string]bool{}))
	if d.Objective != "BEFORE PEWTER GYM" {
		t.Fatalf("unexpected objective: %q", d.Objective)
	}

	d = eng.Evaluate(inputFor(c, map[string]bool{"STARTER:000": true}))
	if d.Objective != "BEFORE CERULEAN GYM" {
		t.Fatalf("unexpected objective: %q", d.Objective)
	}

	d = eng.Evaluate(inputFor(c, map[string]bool{"STARTER:000": true, "PEWTER:000": true}))
	if d.Objective != AllObjectivesComplete {
		t.Fatalf("expected terminal objective, got %q", d.Objective)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	progress := map[string]bool{}
	for i := 0; i < 18; i++ {
		progress[catalog.MakeItemID("PEWTER", i)] = true
	}
	in := inputFor(pewterCatalog(), progress)
	eng := NewEngine()

	first := eng.Evaluate(in)
	second := eng.Evaluate(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("directives differ across identical inputs:\n%+v\n%+v", first, second)
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	progress := map[string]bool{"STARTER:000": true}
	in := inputFor(starterCatalog(), progress)
	NewEngine().Evaluate(in)
	if len(in.Credited) != 0 || len(in.UserCollapsed) != 0 || len(in.UserExpanded) != 0 {
		t.Fatalf("engine must not mutate orchestrator state")
	}
	if len(progress) != 1 || !progress["STARTER:000"] {
		t.Fatalf("engine must not mutate the progress map")
	}
}
