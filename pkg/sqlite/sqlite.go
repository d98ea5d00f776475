// Package sqlite provides the default local snapshot cache, backed by a
// SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/db"
)

var _ db.Database = (*DB)(nil)

// schemaVersion is stored in PRAGMA user_version. The cache only holds
// data that can be fetched again, so an older file is rebuilt rather than
// migrated.
const schemaVersion = 2

const dropSchema = `
DROP TABLE IF EXISTS group_snapshot;
DROP TABLE IF EXISTS activity_log;
`

const schema = `
CREATE TABLE IF NOT EXISTS group_snapshot (
    viewer_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    name TEXT NOT NULL,
    payload TEXT NOT NULL,
    fetched_at INTEGER NOT NULL,
    PRIMARY KEY (viewer_id, group_id)
);

CREATE TABLE IF NOT EXISTS activity_log (
    viewer_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    payload TEXT NOT NULL,
    PRIMARY KEY (viewer_id, group_id, id)
);

CREATE INDEX IF NOT EXISTS idx_activity_log_group ON activity_log(viewer_id, group_id, position);
`

// DB is a snapshot cache stored in a SQLite file
type DB struct {
	db *sql.DB
}

// New opens (creating if needed) the cache at path and ensures the schema
func New(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite allows a single writer
	conn.SetMaxOpenConns(1)

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{db: conn}, nil
}

func runMigrations(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version < schemaVersion {
		if _, err := conn.Exec(dropSchema); err != nil {
			return fmt.Errorf("failed to drop old cache tables: %w", err)
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		return err
	}
	_, err := conn.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveGroupSnapshot replaces the viewer's cached snapshot for a group
func (d *DB) SaveGroupSnapshot(ctx context.Context, viewerID string, group model.Group, fetchedAt time.Time) error {
	snap, err := db.NewGroupSnapshot(viewerID, group, fetchedAt)
	if err != nil {
		return err
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO group_snapshot (viewer_id, group_id, name, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(viewer_id, group_id) DO UPDATE SET
			name = excluded.name,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, snap.ViewerID, snap.GroupID, snap.Name, string(snap.Payload), snap.FetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save snapshot for group %s: %w", group.ID, err)
	}
	return nil
}

// GetGroupSnapshot returns the viewer's cached snapshot, or nil if there
// is none
func (d *DB) GetGroupSnapshot(ctx context.Context, viewerID, groupID string) (*db.GroupSnapshot, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT viewer_id, group_id, name, payload, fetched_at FROM group_snapshot
		WHERE viewer_id = ? AND group_id = ?
	`, viewerID, groupID)

	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for group %s: %w", groupID, err)
	}
	return snap, nil
}

// ListGroupSnapshots returns the viewer's cached snapshots ordered by name
func (d *DB) ListGroupSnapshots(ctx context.Context, viewerID string) ([]db.GroupSnapshot, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT viewer_id, group_id, name, payload, fetched_at FROM group_snapshot
		WHERE viewer_id = ? ORDER BY name
	`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []db.GroupSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snaps, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*db.GroupSnapshot, error) {
	var snap db.GroupSnapshot
	var payload string
	var fetchedAt int64
	if err := s.Scan(&snap.ViewerID, &snap.GroupID, &snap.Name, &payload, &fetchedAt); err != nil {
		return nil, err
	}
	snap.Payload = []byte(payload)
	snap.FetchedAt = time.UnixMilli(fetchedAt).UTC()
	return &snap, nil
}

// DeleteGroupSnapshot removes a group and its activity from the viewer's
// cache
func (d *DB) DeleteGroupSnapshot(ctx context.Context, viewerID, groupID string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM group_snapshot WHERE viewer_id = ? AND group_id = ?`, viewerID, groupID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_log WHERE viewer_id = ? AND group_id = ?`, viewerID, groupID); err != nil {
		return fmt.Errorf("failed to delete activity logs: %w", err)
	}
	return tx.Commit()
}

// SaveActivityLogs replaces the viewer's cached activity feed of a group
func (d *DB) SaveActivityLogs(ctx context.Context, viewerID, groupID string, logs []model.ActivityLog) error {
	if viewerID == "" {
		return fmt.Errorf("cannot cache activity for group %s without a signed-in user", groupID)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_log WHERE viewer_id = ? AND group_id = ?`, viewerID, groupID); err != nil {
		return fmt.Errorf("failed to clear activity logs: %w", err)
	}

	for i, entry := range logs {
		payload, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode activity log %s: %w", entry.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO activity_log (viewer_id, group_id, id, position, payload) VALUES (?, ?, ?, ?, ?)
		`, viewerID, groupID, entry.ID, i, string(payload))
		if err != nil {
			return fmt.Errorf("failed to insert activity log %s: %w", entry.ID, err)
		}
	}

	return tx.Commit()
}

// GetActivityLogs returns the viewer's cached activity feed in its
// original order
func (d *DB) GetActivityLogs(ctx context.Context, viewerID, groupID string) ([]model.ActivityLog, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT payload FROM activity_log WHERE viewer_id = ? AND group_id = ? ORDER BY position
	`, viewerID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	var logs []model.ActivityLog
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		var entry model.ActivityLog
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode activity log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}
	return logs, nil
}
