package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/db"
)

const snapshotColumns = `viewer_id, group_id, name, payload, fetched_at`

// SaveGroupSnapshot upserts the viewer's cached snapshot for a group
func (d *DB) SaveGroupSnapshot(ctx context.Context, viewerID string, group model.Group, fetchedAt time.Time) error {
	snap, err := db.NewGroupSnapshot(viewerID, group, fetchedAt)
	if err != nil {
		return err
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO group_snapshot (`+snapshotColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (viewer_id, group_id) DO UPDATE SET
			name = EXCLUDED.name,
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at
	`, snap.ViewerID, snap.GroupID, snap.Name, snap.Payload, snap.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for group %s: %w", group.ID, err)
	}
	return nil
}

func scanSnapshot(row pgx.CollectableRow) (db.GroupSnapshot, error) {
	var snap db.GroupSnapshot
	if err := row.Scan(&snap.ViewerID, &snap.GroupID, &snap.Name, &snap.Payload, &snap.FetchedAt); err != nil {
		return db.GroupSnapshot{}, err
	}
	snap.FetchedAt = snap.FetchedAt.UTC()
	return snap, nil
}

// GetGroupSnapshot returns the viewer's cached snapshot, or nil if there
// is none
func (d *DB) GetGroupSnapshot(ctx context.Context, viewerID, groupID string) (*db.GroupSnapshot, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+snapshotColumns+` FROM group_snapshot WHERE viewer_id = $1 AND group_id = $2
	`, viewerID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for group %s: %w", groupID, err)
	}

	snap, err := pgx.CollectExactlyOneRow(rows, scanSnapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot for group %s: %w", groupID, err)
	}
	return &snap, nil
}

// ListGroupSnapshots returns the viewer's cached snapshots ordered by name
func (d *DB) ListGroupSnapshots(ctx context.Context, viewerID string) ([]db.GroupSnapshot, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+snapshotColumns+` FROM group_snapshot WHERE viewer_id = $1 ORDER BY name
	`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}

	snaps, err := pgx.CollectRows(rows, scanSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshots: %w", err)
	}
	return snaps, nil
}

// DeleteGroupSnapshot removes a group and its activity from the viewer's
// cache
func (d *DB) DeleteGroupSnapshot(ctx context.Context, viewerID, groupID string) error {
	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM group_snapshot WHERE viewer_id = $1 AND group_id = $2`, viewerID, groupID); err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM activity_log WHERE viewer_id = $1 AND group_id = $2`, viewerID, groupID); err != nil {
			return fmt.Errorf("failed to delete activity logs: %w", err)
		}
		return nil
	})
}

// SaveActivityLogs replaces the viewer's cached activity feed of a group
func (d *DB) SaveActivityLogs(ctx context.Context, viewerID, groupID string, logs []model.ActivityLog) error {
	if viewerID == "" {
		return fmt.Errorf("cannot cache activity for group %s without a signed-in user", groupID)
	}

	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM activity_log WHERE viewer_id = $1 AND group_id = $2`, viewerID, groupID); err != nil {
			return fmt.Errorf("failed to clear activity logs: %w", err)
		}

		batch := &pgx.Batch{}
		for i, entry := range logs {
			payload, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("failed to encode activity log %s: %w", entry.ID, err)
			}
			batch.Queue(`
				INSERT INTO activity_log (viewer_id, group_id, id, position, payload) VALUES ($1, $2, $3, $4, $5)
			`, viewerID, groupID, entry.ID, i, payload)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert activity logs: %w", err)
		}
		return nil
	})
}

// GetActivityLogs returns the viewer's cached activity feed in its
// original order
func (d *DB) GetActivityLogs(ctx context.Context, viewerID, groupID string) ([]model.ActivityLog, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT payload FROM activity_log WHERE viewer_id = $1 AND group_id = $2 ORDER BY position
	`, viewerID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}

	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("failed to scan activity logs: %w", err)
	}

	logs := make([]model.ActivityLog, 0, len(payloads))
	for _, payload := range payloads {
		var entry model.ActivityLog
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode activity log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
