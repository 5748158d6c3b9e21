package app

import (
	"oakdex/internal/catalog"
	"oakdex/internal/i18n"
)

// loadedVersion bundles everything derived from one catalog document. A
// version switch replaces the whole bundle atomically; nothing patches it in
// place.
type loadedVersion struct {
	Info    catalog.VersionInfo
	Catalog catalog.Catalog
	Entries []catalog.Entry
	Items   map[string]catalog.ItemEntry
	Lang    *i18n.Table
}

// allCompleteKey is the pseudo-section credited once every real section with
// a threshold is complete, so the final banner fires exactly once per
// version.
const allCompleteKey = "__all__"
