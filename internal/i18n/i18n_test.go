package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTableResolvesDottedPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "es.json")
	doc := `{
		"objective": {"STARTER": "ANTES DEL GIMNASIO DE PEWTER"},
		"ui": {"caught": "Capturados"}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := table.T("objective.STARTER", "fallback"); got != "ANTES DEL GIMNASIO DE PEWTER" {
		t.Fatalf("unexpected lookup: %q", got)
	}
	if got := table.T("ui.caught", "Caught"); got != "Capturados" {
		t.Fatalf("unexpected lookup: %q", got)
	}
	if got := table.T("objective.MISSING", "BEFORE PEWTER GYM"); got != "BEFORE PEWTER GYM" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := table.T("objective", "fallback"); got != "fallback" {
		t.Fatalf("non-string node must fall back, got %q", got)
	}
	if got := table.T("objective.STARTER.deeper", "fallback"); got != "fallback" {
		t.Fatalf("descending through a string must fall back, got %q", got)
	}
}

func TestEmptyTableAlwaysFallsBack(t *testing.T) {
	if got := Empty().T("any.path", "native"); got != "native" {
		t.Fatalf("expected fallback, got %q", got)
	}
	var nilTable *Table
	if got := nilTable.T("any.path", "native"); got != "native" {
		t.Fatalf("nil table must be safe, got %q", got)
	}
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"objective":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
