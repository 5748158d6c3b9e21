package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progress (
			version TEXT NOT NULL,
			item_id TEXT NOT NULL,
			caught_ts TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY(version, item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS credited_sections (
			version TEXT NOT NULL,
			section_key TEXT NOT NULL,
			credited_ts TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY(version, section_key)
		);`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) LoadProgress(ctx context.Context, version string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id FROM progress WHERE version = ?`, version)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) SetCaught(ctx context.Context, version, itemID string, caught bool) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil
	}
	if caught {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO progress(version, item_id, caught_ts) VALUES(?, ?, ?)`,
			version, itemID, time.Now().UTC().Format(timeLayout),
		)
		return err
	}
	// Uncaught rows are deleted, not flagged, so counting rows counts
	// progress.
	_, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE version = ? AND item_id = ?`, version, itemID)
	return err
}

func (s *SQLiteStore) RemoveItems(ctx context.Context, version string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, id := range itemIDs {
		if _, err = tx.ExecContext(ctx, `DELETE FROM progress WHERE version = ? AND item_id = ?`, version, id); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// ClearVersion forgets one version entirely: progress and credited
// achievements. Other versions' partitions are untouched.
func (s *SQLiteStore) ClearVersion(ctx context.Context, version string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE version = ?`, version); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM credited_sections WHERE version = ?`, version)
	return err
}

func (s *SQLiteStore) LoadCredited(ctx context.Context, version string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT section_key FROM credited_sections WHERE version = ?`, version)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) AddCredited(ctx context.Context, version, sectionKey string) error {
	sectionKey = strings.TrimSpace(sectionKey)
	if sectionKey == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO credited_sections(version, section_key, credited_ts) VALUES(?, ?, ?)`,
		version, sectionKey, time.Now().UTC().Format(timeLayout),
	)
	return err
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for key, value := range values {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO app_settings(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, value); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"
