package i18n

import (
	"encoding/json"
	"os"
	"strings"
)

// Table resolves display strings from a nested JSON language document by
// dotted path. Lookups are total: any miss returns the supplied fallback.
type Table struct {
	root map[string]any
}

// Empty returns a table where every lookup falls back.
func Empty() *Table { return &Table{} }

// Load reads a language document. A missing or malformed document is not an
// error worth failing startup over; callers log it and keep catalog-native
// text.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var root map[string]any
	if err := json.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	return &Table{root: root}, nil
}

// T resolves a dotted path like "objective.PEWTER", returning fallback when
// any path segment is absent or resolves to a non-string.
func (t *Table) T(path, fallback string) string {
	if t == nil || t.root == nil || path == "" {
		return fallback
	}
	var node any = t.root
	for _, seg := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return fallback
		}
		node, ok = m[seg]
		if !ok {
			return fallback
		}
	}
	if s, ok := node.(string); ok {
		return s
	}
	return fallback
}
