package state

import "context"

// Store persists per-version progress, per-version credited achievements and
// version-independent settings. Progress is presence-based: a caught item has
// a row, an uncaught item has none, so the row count for a version equals its
// caught counter and no tombstones exist.
type Store interface {
	EnsureSchema(ctx context.Context) error
	LoadProgress(ctx context.Context, version string) (map[string]bool, error)
	SetCaught(ctx context.Context, version, itemID string, caught bool) error
	RemoveItems(ctx context.Context, version string, itemIDs []string) error
	ClearVersion(ctx context.Context, version string) error
	LoadCredited(ctx context.Context, version string) (map[string]bool, error)
	AddCredited(ctx context.Context, version, sectionKey string) error
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	Close() error
}

// Settings keys shared between app and store.
const (
	SettingMuted       = "cries_muted"
	SettingLastVersion = "last_version"
)
