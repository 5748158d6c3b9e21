package catalog

import (
	"strings"
	"testing"
)

func validCatalog() Catalog {
	return Catalog{
		Sections: []Section{
			{
				Key:      "STARTER",
				Title:    "Choose Your Starter!",
				Required: 3,
				Pokemon: []Item{
					{Dex: 1, Name: "Bulbasaur"},
					{Dex: 4, Name: "Charmander"},
					{Dex: 7, Name: "Squirtle"},
				},
				Families: [][]string{{"Bulbasaur"}, {"Charmander"}, {"Squirtle"}},
			},
			{
				Key:      "FOSSIL",
				Title:    "Revive One Fossil Line",
				Required: 2,
				Pokemon: []Item{
					{Dex: 138, Name: "Omanyte"},
					{Dex: 139, Name: "Omastar"},
					{Dex: 140, Name: "Kabuto"},
					{Dex: 141, Name: "Kabutops"},
				},
			},
		},
		ExclusiveGroups: []ExclusiveGroup{
			{Section: "FOSSIL", Families: [][]string{{"Omanyte", "Omastar"}, {"Kabuto", "Kabutops"}}},
		},
		DedupeFinalEvos: []string{"Omastar"},
		Total:           5,
	}
}

func TestCatalogValidateAcceptsWellFormedDocument(t *testing.T) {
	if err := validCatalog().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCatalogValidateRejectsDuplicateSectionKey(t *testing.T) {
	c := validCatalog()
	c.Sections[1].Key = "STARTER"
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "duplicate section key") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestCatalogValidateRejectsRequiredOverItemCount(t *testing.T) {
	c := validCatalog()
	c.Sections[0].Required = 4
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected required range error, got %v", err)
	}
}

func TestCatalogValidateRejectsOverlappingFamilies(t *testing.T) {
	c := validCatalog()
	c.ExclusiveGroups[0].Families = [][]string{{"Omanyte", "Omastar"}, {"Omastar", "Kabuto"}}
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "appears in families") {
		t.Fatalf("expected overlap error, got %v", err)
	}
}

func TestCatalogValidateRejectsUnknownExclusiveSection(t *testing.T) {
	c := validCatalog()
	c.ExclusiveGroups[0].Section = "NOPE"
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "unknown section") {
		t.Fatalf("expected unknown section error, got %v", err)
	}
}

func TestAllExclusiveGroupsMergesSectionShorthandFirst(t *testing.T) {
	groups := validCatalog().AllExclusiveGroups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Section != "STARTER" {
		t.Fatalf("expected section shorthand group first, got %q", groups[0].Section)
	}
	if groups[1].Section != "FOSSIL" {
		t.Fatalf("expected top-level group second, got %q", groups[1].Section)
	}
}

func TestManifestValidate(t *testing.T) {
	m := Manifest{
		SchemaVersion: 1,
		Versions: []VersionInfo{
			{Key: "red", Title: "Pokémon Red", Catalog: "gen1/red.json"},
			{Key: "blue", Title: "Pokémon Blue", Catalog: "gen1/blue.json"},
		},
		Default: "red",
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.Default = "yellow"
	if err := m.Validate(); err == nil {
		t.Fatalf("expected undeclared default to be rejected")
	}

	m.Default = "red"
	m.Versions[1].Key = "red"
	if err := m.Validate(); err == nil {
		t.Fatalf("expected duplicate version key to be rejected")
	}
}

func TestManifestFindFallsBackToDefault(t *testing.T) {
	m := Manifest{
		SchemaVersion: 1,
		Versions: []VersionInfo{
			{Key: "red", Title: "Red", Catalog: "r.json"},
			{Key: "yellow", Title: "Yellow", Catalog: "y.json"},
		},
		Default: "yellow",
	}
	v, exact := m.Find("red")
	if !exact || v.Key != "red" {
		t.Fatalf("expected exact match for red, got %q exact=%v", v.Key, exact)
	}
	v, exact = m.Find("green")
	if exact || v.Key != "yellow" {
		t.Fatalf("expected default fallback for unknown key, got %q exact=%v", v.Key, exact)
	}
}
