package app

import "context"

// Store is the persistence surface the orchestrator needs. The sqlite store
// in internal/state implements it.
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

// CryPlayer plays a creature's cry on catch. Implementations must treat
// failures as non-fatal; a toggle never blocks on audio.
type CryPlayer interface {
	Play(ctx context.Context, dex int) error
	SetMuted(muted bool)
	Muted() bool
}
