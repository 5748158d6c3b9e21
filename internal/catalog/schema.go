package catalog

import (
	"fmt"
	"regexp"
)

const SupportedSchemaVersion = 1

var versionKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,31}$`)

// Manifest lists the challenge versions the tracker can load. One entry per
// game variant; exactly one version is active at a time.
type Manifest struct {
	SchemaVersion int           `yaml:"schema_version"`
	Versions      []VersionInfo `yaml:"versions"`
	Default       string        `yaml:"default"`
}

type VersionInfo struct {
	Key     string `yaml:"key"`
	Title   string `yaml:"title"`
	Catalog string `yaml:"catalog"`
	Lang    string `yaml:"lang"`
}

// Catalog is the immutable per-version document. A version switch replaces it
// wholesale; nothing mutates it in place.
type Catalog struct {
	Sections        []Section        `json:"sections"`
	ExclusiveGroups []ExclusiveGroup `json:"exclusiveGroups"`
	DedupeFinalEvos []string         `json:"dedupeFinalEvos"`
	Total           int              `json:"total"`
}

type Section struct {
	Key            string     `json:"key"`
	Title          string     `json:"title"`
	Required       int        `json:"required"`
	Pokemon        []Item     `json:"pokemon"`
	ObjectiveLabel string     `json:"objectiveLabel"`
	ResetLabel     string     `json:"resetLabel"`
	Exclusive      bool       `json:"exclusive"`
	Families       [][]string `json:"families"`
}

type Item struct {
	Dex   int    `json:"dex"`
	Name  string `json:"name"`
	Info  string `json:"info"`
	Notes string `json:"notes"`
	Image string `json:"image"`
}

// ExclusiveGroup declares mutually exclusive item families within one
// section. Family membership is by normalized display name.
type ExclusiveGroup struct {
	Section  string     `json:"section"`
	Families [][]string `json:"families"`
}

func (m Manifest) Validate() error {
	if m.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if m.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported manifest schema_version %d (max supported %d)", m.SchemaVersion, SupportedSchemaVersion)
	}
	if len(m.Versions) == 0 {
		return fmt.Errorf("versions must contain at least one entry")
	}
	seen := map[string]struct{}{}
	for _, v := range m.Versions {
		if !versionKeyPattern.MatchString(v.Key) {
			return fmt.Errorf("invalid version key %q", v.Key)
		}
		if _, ok := seen[v.Key]; ok {
			return fmt.Errorf("duplicate version key %q", v.Key)
		}
		seen[v.Key] = struct{}{}
		if v.Title == "" {
			return fmt.Errorf("version %q: title is required", v.Key)
		}
		if v.Catalog == "" {
			return fmt.Errorf("version %q: catalog is required", v.Key)
		}
	}
	if m.Default != "" {
		if _, ok := seen[m.Default]; !ok {
			return fmt.Errorf("default version %q is not declared", m.Default)
		}
	}
	return nil
}

// Find returns the version entry for key. The second return reports whether
// key matched exactly; otherwise the manifest default (or first declared
// version) is returned.
func (m Manifest) Find(key string) (VersionInfo, bool) {
	var fallback VersionInfo
	if len(m.Versions) > 0 {
		fallback = m.Versions[0]
	}
	for _, v := range m.Versions {
		if v.Key == key {
			return v, true
		}
		if v.Key == m.Default {
			fallback = v
		}
	}
	return fallback, false
}

func (c Catalog) Validate() error {
	if len(c.Sections) == 0 {
		return fmt.Errorf("sections must contain at least one entry")
	}
	sectionKeys := map[string]struct{}{}
	for _, s := range c.Sections {
		if s.Key == "" {
			return fmt.Errorf("sections[].key is required")
		}
		if _, ok := sectionKeys[s.Key]; ok {
			return fmt.Errorf("duplicate section key %q", s.Key)
		}
		sectionKeys[s.Key] = struct{}{}
		if s.Title == "" {
			return fmt.Errorf("section %q: title is required", s.Key)
		}
		if s.Required < 0 || s.Required > len(s.Pokemon) {
			return fmt.Errorf("section %q: required must be 0..%d, got %d", s.Key, len(s.Pokemon), s.Required)
		}
		for i, p := range s.Pokemon {
			if p.Name == "" {
				return fmt.Errorf("section %q: pokemon[%d].name is required", s.Key, i)
			}
		}
		if len(s.Families) > 0 {
			if err := validateFamilies(s.Key, s.Families); err != nil {
				return err
			}
		}
	}
	for _, g := range c.ExclusiveGroups {
		if _, ok := sectionKeys[g.Section]; !ok {
			return fmt.Errorf("exclusiveGroups: unknown section %q", g.Section)
		}
		if err := validateFamilies(g.Section, g.Families); err != nil {
			return err
		}
	}
	for _, name := range c.DedupeFinalEvos {
		if NormalizeName(name) == "" {
			return fmt.Errorf("dedupeFinalEvos: empty name %q", name)
		}
	}
	if c.Total < 0 {
		return fmt.Errorf("total must be >= 0")
	}
	return nil
}

// Families within one group must not overlap: an item can belong to at most
// one alternative.
func validateFamilies(sectionKey string, families [][]string) error {
	if len(families) < 2 {
		return fmt.Errorf("section %q: exclusivity needs at least two families", sectionKey)
	}
	seen := map[string]int{}
	for fi, family := range families {
		if len(family) == 0 {
			return fmt.Errorf("section %q: families[%d] is empty", sectionKey, fi)
		}
		for _, name := range family {
			n := NormalizeName(name)
			if n == "" {
				return fmt.Errorf("section %q: families[%d] contains empty name %q", sectionKey, fi, name)
			}
			if prev, ok := seen[n]; ok && prev != fi {
				return fmt.Errorf("section %q: %q appears in families %d and %d", sectionKey, name, prev, fi)
			}
			seen[n] = fi
		}
	}
	return nil
}

// AllExclusiveGroups merges the top-level group list with the per-section
// families shorthand, preserving declaration order (sections first, then
// top-level groups).
func (c Catalog) AllExclusiveGroups() []ExclusiveGroup {
	groups := make([]ExclusiveGroup, 0, len(c.ExclusiveGroups))
	for _, s := range c.Sections {
		if len(s.Families) > 0 {
			groups = append(groups, ExclusiveGroup{Section: s.Key, Families: s.Families})
		}
	}
	return append(groups, c.ExclusiveGroups...)
}

// ItemCount is the number of trackable items across all sections.
func (c Catalog) ItemCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Pokemon)
	}
	return n
}

// ItemIDs returns the derived identifiers for one section, in declaration
// order.
func (s Section) ItemIDs() []string {
	ids := make([]string, len(s.Pokemon))
	for i := range s.Pokemon {
		ids[i] = MakeItemID(s.Key, i)
	}
	return ids
}
