package state

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "oakdex.db"))
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

func TestProgressRoundTripAndRemoval(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetCaught(ctx, "red", "STARTER:000", true); err != nil {
		t.Fatalf("set caught: %v", err)
	}
	if err := store.SetCaught(ctx, "red", "PEWTER:003", true); err != nil {
		t.Fatalf("set caught: %v", err)
	}
	// Idempotent re-insert.
	if err := store.SetCaught(ctx, "red", "STARTER:000", true); err != nil {
		t.Fatalf("set caught twice: %v", err)
	}

	got, err := store.LoadProgress(ctx, "red")
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(got) != 2 || !got["STARTER:000"] || !got["PEWTER:003"] {
		t.Fatalf("unexpected progress: %v", got)
	}

	// Uncatching deletes the row rather than writing false.
	if err := store.SetCaught(ctx, "red", "STARTER:000", false); err != nil {
		t.Fatalf("unset caught: %v", err)
	}
	got, err = store.LoadProgress(ctx, "red")
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one remaining row, got %v", got)
	}
}

func TestVersionPartitionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.SetCaught(ctx, "red", "STARTER:000", true)
	_ = store.SetCaught(ctx, "yellow", "STARTER:000", true)
	_ = store.AddCredited(ctx, "red", "STARTER")
	_ = store.AddCredited(ctx, "yellow", "STARTER")

	if err := store.ClearVersion(ctx, "red"); err != nil {
		t.Fatalf("clear version: %v", err)
	}

	red, _ := store.LoadProgress(ctx, "red")
	if len(red) != 0 {
		t.Fatalf("expected red cleared, got %v", red)
	}
	yellow, _ := store.LoadProgress(ctx, "yellow")
	if len(yellow) != 1 {
		t.Fatalf("expected yellow untouched, got %v", yellow)
	}
	redCredited, _ := store.LoadCredited(ctx, "red")
	if len(redCredited) != 0 {
		t.Fatalf("expected red achievements cleared, got %v", redCredited)
	}
	yellowCredited, _ := store.LoadCredited(ctx, "yellow")
	if !yellowCredited["STARTER"] {
		t.Fatalf("expected yellow achievements untouched, got %v", yellowCredited)
	}
}

func TestRemoveItemsDeletesExactlyTheGivenSection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"PEWTER:000", "PEWTER:001", "CERULEAN:000"} {
		if err := store.SetCaught(ctx, "red", id, true); err != nil {
			t.Fatalf("set caught: %v", err)
		}
	}
	if err := store.RemoveItems(ctx, "red", []string{"PEWTER:000", "PEWTER:001", "PEWTER:002"}); err != nil {
		t.Fatalf("remove items: %v", err)
	}
	got, _ := store.LoadProgress(ctx, "red")
	if len(got) != 1 || !got["CERULEAN:000"] {
		t.Fatalf("expected only CERULEAN row to survive, got %v", got)
	}
}

func TestCreditedSetGrowsMonotonically(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddCredited(ctx, "red", "PEWTER"); err != nil {
		t.Fatalf("add credited: %v", err)
	}
	// Duplicate credit is a no-op.
	if err := store.AddCredited(ctx, "red", "PEWTER"); err != nil {
		t.Fatalf("add credited twice: %v", err)
	}
	got, err := store.LoadCredited(ctx, "red")
	if err != nil {
		t.Fatalf("load credited: %v", err)
	}
	if len(got) != 1 || !got["PEWTER"] {
		t.Fatalf("unexpected credited set: %v", got)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveSettings(ctx, map[string]string{
		SettingMuted:       "true",
		SettingLastVersion: "yellow",
	}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if err := store.SaveSettings(ctx, map[string]string{SettingMuted: "false"}); err != nil {
		t.Fatalf("overwrite setting: %v", err)
	}

	got, err := store.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got[SettingMuted] != "false" || got[SettingLastVersion] != "yellow" {
		t.Fatalf("unexpected settings: %v", got)
	}
}
