package catalog

// Entry is one element of the flattened catalog: either a section header or
// an item. The flattened sequence preserves declaration order exactly; it is
// the only ordering guarantee the rest of the tracker relies on.
type Entry interface {
	entry()
}

type SectionHeader struct {
	Key            string
	Title          string
	Required       int
	ObjectiveLabel string
}

type ItemEntry struct {
	SectionKey string
	ID         string
	Name       string
	Normalized string
	Dex        int
	Info       string
	Notes      string
	Image      string
}

func (SectionHeader) entry() {}
func (ItemEntry) entry()     {}

// Flatten converts the nested catalog into a flat ordered sequence of
// entries. No reordering, no deduplication; rebuilt on every version switch
// and immutable afterwards.
func Flatten(c Catalog) []Entry {
	entries := make([]Entry, 0, len(c.Sections)+c.ItemCount())
	for _, s := range c.Sections {
		entries = append(entries, SectionHeader{
			Key:            s.Key,
			Title:          s.Title,
			Required:       s.Required,
			ObjectiveLabel: s.ObjectiveLabel,
		})
		for i, p := range s.Pokemon {
			entries = append(entries, ItemEntry{
				SectionKey: s.Key,
				ID:         MakeItemID(s.Key, i),
				Name:       p.Name,
				Normalized: NormalizeName(p.Name),
				Dex:        p.Dex,
				Info:       p.Info,
				Notes:      p.Notes,
				Image:      p.Image,
			})
		}
	}
	return entries
}
